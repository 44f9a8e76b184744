package cmd

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"gallery.GO/core/registry"
)

// Register adds a command. Call from init(); names are unique and the
// registry is locked once Apply runs.
func Register(c *cobra.Command) {
	name := c.Name()
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryCmd) {
		panic("cmd/registry: " + name + " registered after Apply")
	}
	list := registered()
	for _, have := range list {
		if have.Name() == name {
			panic("cmd/registry: duplicate command " + name)
		}
	}
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryCmd, append(list, c))
}

func registered() []*cobra.Command {
	if v, ok := registry.GlobalRegistry.GetGlobal(registry.KeyRegistryCmd); ok && v != nil {
		return v.([]*cobra.Command)
	}
	return nil
}

// namespace is the part of a command name before the first colon.
func namespace(name string) string {
	if i := strings.IndexByte(name, ':'); i > 0 {
		return name[:i]
	}
	return ""
}

// Apply attaches the registered commands to root, grouping help output by
// namespace (colorgallery, cron, db), and locks the registry.
func Apply() {
	list := append([]*cobra.Command(nil), registered()...)
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	for _, c := range list {
		if ns := namespace(c.Name()); ns != "" {
			if !rootCmd.ContainsGroup(ns) {
				rootCmd.AddGroup(&cobra.Group{ID: ns, Title: ns + " commands:"})
			}
			c.GroupID = ns
		}
		rootCmd.AddCommand(c)
	}
	registry.GlobalRegistry.Lock(registry.KeyRegistryCmd)
}
