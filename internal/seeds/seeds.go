package seeds

func SeedAll() error {
	if err := SeedRoles(); err != nil {
		return err
	}
	if err := SeedPermissions(); err != nil {
		return err
	}
	return nil
}
