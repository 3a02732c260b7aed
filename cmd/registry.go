package cmd

import (
	"fmt"
	"strings"

	"github.com/cottand/extunify/backend"
	"github.com/spf13/cobra"
)

func newRegistryCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "registry",
		Short: "List the types the registry knows about",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			r := opts.registry
			for _, tag := range r.Constructors() {
				c, _ := r.Constructor(tag)
				_, _ = fmt.Fprintf(out, "constructor %s(T) lowers to struct { %s T }\n", tag, c.Field)
			}
			for _, name := range r.Opaques() {
				t, _ := r.Lookup(name)
				model := r.ModelOf(t)
				members := make([]string, len(model.Members))
				for i, m := range model.Members {
					members[i] = m.Name + " " + backend.GoTypeName(m.Type)
				}
				_, _ = fmt.Fprintf(out, "opaque %s lowers to struct { %s }\n", name, strings.Join(members, "; "))
			}
			_, _ = fmt.Fprintf(out, "names: %s\n", strings.Join(r.Names(), ", "))
			return nil
		},
	}
}
