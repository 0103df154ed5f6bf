package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/bestiary/internal/orchestrators/catalog"
	"github.com/KirkDiggler/bestiary/internal/orchestrators/navigation"
	"github.com/KirkDiggler/bestiary/internal/render"
)

var (
	filterName      string
	filterMinCR     float64
	filterMaxCR     float64
	filterType      string
	filterSize      string
	filterAlignment string
	noQuote         bool
)

var monstersCmd = &cobra.Command{
	Use:   "monsters",
	Short: "Browse monsters straight from the upstream API",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the monster index in canonical order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer cancel()

		svc, _, err := newCatalog(cfg, nil)
		if err != nil {
			return err
		}

		out, err := svc.LoadCatalog(ctx)
		if err != nil {
			return err
		}
		return render.RefTable(cmd.OutOrStdout(), out.Refs)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <index>",
	Short: "Print one monster's stat block",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer cancel()

		_, client, err := newCatalog(cfg, nil)
		if err != nil {
			return err
		}

		record, err := client.GetMonsterDetail(ctx, args[0])
		if err != nil {
			return err
		}

		r, err := render.New(&render.Config{Images: client, NoQuote: noQuote})
		if err != nil {
			return err
		}
		return r.StatBlock(cmd.OutOrStdout(), record)
	},
}

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Load every stat block and print the ones matching the filter, sorted by name",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer cancel()

		snapshot, err := loadSnapshot(ctx)
		if err != nil {
			return err
		}

		matched := catalog.SortByName(catalog.Filter(snapshot.Records, filterFromFlags(cmd)))
		if err := render.RecordTable(cmd.OutOrStdout(), matched); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d monsters\n", len(matched), len(snapshot.Records))
		return err
	},
}

var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Print a random monster, drawn from the filter matches when there are any",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer cancel()

		svc, client, err := newCatalog(cfg, nil)
		if err != nil {
			return err
		}

		out, err := svc.Refresh(ctx)
		if err != nil {
			return err
		}
		snapshot := out.Snapshot

		nav, err := navigation.New(&navigation.Config{Refs: snapshot.Refs})
		if err != nil {
			return err
		}
		if _, err := nav.RandomSelection(catalog.RandomPool(snapshot, filterFromFlags(cmd))); err != nil {
			return err
		}

		current, ok := nav.Current()
		if !ok {
			return fmt.Errorf("no monsters to choose from")
		}

		record, ok := snapshot.Record(current.Index)
		if !ok {
			// Drawn from the index but its stat block failed to load; try once more
			record, err = client.GetMonsterDetail(ctx, current.Index)
			if err != nil {
				return err
			}
		}

		r, err := render.New(&render.Config{Images: client, NoQuote: noQuote})
		if err != nil {
			return err
		}
		return r.StatBlock(cmd.OutOrStdout(), record)
	},
}

func init() {
	for _, c := range []*cobra.Command{filterCmd, randomCmd} {
		c.Flags().StringVar(&filterName, "name", "", "name contains (case-insensitive)")
		c.Flags().Float64Var(&filterMinCR, "min-cr", 0, "minimum challenge rating, inclusive")
		c.Flags().Float64Var(&filterMaxCR, "max-cr", 0, "maximum challenge rating, inclusive")
		c.Flags().StringVar(&filterType, "type", "", "creature type, e.g. dragon")
		c.Flags().StringVar(&filterSize, "size", "", "size, e.g. Large")
		c.Flags().StringVar(&filterAlignment, "alignment", "", "alignment contains, e.g. evil")
	}
	for _, c := range []*cobra.Command{showCmd, randomCmd} {
		c.Flags().BoolVar(&noQuote, "no-quote", false, "omit the lore quote footer")
	}

	monstersCmd.AddCommand(listCmd, showCmd, filterCmd, randomCmd)
}

// filterFromFlags builds a FilterSpec; CR bounds apply only when passed
func filterFromFlags(cmd *cobra.Command) catalog.FilterSpec {
	spec := catalog.FilterSpec{
		NameContains:      filterName,
		Type:              filterType,
		Size:              filterSize,
		AlignmentContains: filterAlignment,
	}
	if cmd.Flags().Changed("min-cr") {
		spec.MinCR = catalog.CR(filterMinCR)
	}
	if cmd.Flags().Changed("max-cr") {
		spec.MaxCR = catalog.CR(filterMaxCR)
	}
	return spec
}

func loadSnapshot(ctx context.Context) (*catalog.Snapshot, error) {
	svc, _, err := newCatalog(cfg, nil)
	if err != nil {
		return nil, err
	}

	out, err := svc.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return out.Snapshot, nil
}
