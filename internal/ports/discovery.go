package ports

// DiscoveryPort lists config documents stored below a directory.
type DiscoveryPort interface {
	FindConfigs(root string) ([]string, error)
}
