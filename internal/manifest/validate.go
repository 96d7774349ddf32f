package manifest

// Validate checks the merged manifest: every profile reference must be
// defined, inherit chains must be acyclic, and local directories must be
// unique.
func Validate(m *Manifest) error {
	if err := CheckExtensions("manifest", m.Extensions); err != nil {
		return err
	}
	if err := validateProfiles(m.Profiles); err != nil {
		return err
	}
	if m.DefaultProfile != "" {
		if _, ok := m.Profiles[m.DefaultProfile]; !ok {
			return configErrorf("the default profile %q is not defined", m.DefaultProfile)
		}
	}
	for _, name := range sortedNames(m.Profiles) {
		if _, err := profileChain(m, name); err != nil {
			return err
		}
	}

	if len(m.Repositories) == 0 {
		return configErrorf("no repositories are specified")
	}
	seen := make(map[string]string, len(m.Repositories))
	for i, r := range m.Repositories {
		if err := validateRepo(i, r); err != nil {
			return err
		}
		dir := r.LocalDir()
		if other, ok := seen[dir]; ok {
			return configErrorf("repositories %q and %q both use directory %q", other, r.ID, dir)
		}
		seen[dir] = r.ID
		if r.UseProfile != "" {
			if _, ok := m.Profiles[r.UseProfile]; !ok {
				return configErrorf("repositories[%d] (%s): profile %q is referenced, but is undefined", i, r.ID, r.UseProfile)
			}
		}
	}
	return nil
}
