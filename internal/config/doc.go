// Package config reads workspace configurations. A configuration lists
// manifest repositories to fetch into the workspace and the fragment
// layers that fold into the active manifest.
package config
