package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/kin-core/internal/application/handlers"
	"github.com/ersonp/kin-core/internal/domain/ports"
	"github.com/ersonp/kin-core/internal/infrastructure/config"
	"github.com/ersonp/kin-core/internal/infrastructure/vectordb/qdrant"
)

func newTreesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trees",
		Short: "Manage family trees",
		RunE:  runTreesList,
	}

	cmd.AddCommand(
		newTreesListCmd(),
		newTreesCreateCmd(),
		newTreesDeleteCmd(),
	)

	return cmd
}

func newTreesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all family trees",
		RunE:  runTreesList,
	}
}

func runTreesList(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	trees, err := config.LoadTrees(cwd)
	if err != nil {
		return fmt.Errorf("loading trees: %w", err)
	}

	printTrees(cmd, trees)
	return nil
}

func printTrees(cmd *cobra.Command, trees *config.TreesConfig) {
	out := cmd.OutOrStdout()
	if len(trees.Trees) == 0 {
		fmt.Fprintln(out, "No trees configured.")
		fmt.Fprintln(out, "Use 'kin trees create NAME' to create a tree.")
		return
	}

	fmt.Fprintf(out, "%-20s %-25s %s\n", "NAME", "COLLECTION", "DESCRIPTION")
	fmt.Fprintf(out, "%-20s %-25s %s\n", "----", "----------", "-----------")

	for _, name := range trees.Names() {
		tree := trees.Trees[name]
		fmt.Fprintf(out, "%-20s %-25s %s\n", name, tree.Collection, tree.Description)
	}
}

func newTreesCreateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new family tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTreesCreate(cmd, args[0], description)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Tree description")

	return cmd
}

func runTreesCreate(cmd *cobra.Command, name string, description string) error {
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg := config.Default()
	if config.Exists(cwd) {
		if cfg, err = config.Load(cwd); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}

	return withTreeDB(cwd, name, func(db ports.RelationalDB) error {
		var collections ports.CollectionManager
		if cfg.Index.Enabled {
			repo, err := openCollection(cfg, config.GenerateCollectionName(name))
			if err != nil {
				return err
			}
			defer repo.Close()
			collections = repo
		}

		result, err := handlers.NewInitHandler(db, collections).Handle(ctx, cwd, name, description)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if result.Initialized {
			fmt.Fprintf(out, "Initialized kin in %s\n", config.ConfigDir(cwd))
		}
		fmt.Fprintf(out, "Created tree %q with collection %q\n", result.Tree, result.Collection)
		return nil
	})
}

func newTreesDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a family tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTreesDelete(cmd, args[0], force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete even if the tree contains members")

	return cmd
}

func runTreesDelete(cmd *cobra.Command, name string, force bool) error {
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	trees, err := config.LoadTrees(cwd)
	if err != nil {
		return fmt.Errorf("loading trees: %w", err)
	}

	tree, err := trees.Get(name)
	if err != nil {
		return err
	}

	if !force {
		if err := requireEmptyTree(ctx, cwd, name); err != nil {
			return err
		}
	}

	if cfg.Index.Enabled {
		if err := dropCollection(ctx, cfg, tree.Collection); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not delete collection %q: %v\n", tree.Collection, err)
		}
	}

	if err := os.RemoveAll(config.TreeDir(cwd, name)); err != nil {
		return fmt.Errorf("removing tree data: %w", err)
	}

	trees.Remove(name)
	if err := trees.Save(cwd); err != nil {
		return fmt.Errorf("saving trees: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted tree %q\n", name)
	return nil
}

// requireEmptyTree fails when the tree still holds members.
func requireEmptyTree(ctx context.Context, basePath, name string) error {
	return withTreeDB(basePath, name, func(db ports.RelationalDB) error {
		if err := db.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensuring sqlite schema: %w", err)
		}
		count, err := db.CountMembers(ctx)
		if err != nil {
			return fmt.Errorf("counting members: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("tree %q contains %d members, use --force to delete", name, count)
		}
		return nil
	})
}

func openCollection(cfg *config.Config, collection string) (*qdrant.Repository, error) {
	qdrantCfg := cfg.Qdrant
	qdrantCfg.Collection = collection

	repo, err := qdrant.NewRepository(qdrantCfg)
	if err != nil {
		return nil, fmt.Errorf("creating qdrant repository: %w", err)
	}
	return repo, nil
}

func dropCollection(ctx context.Context, cfg *config.Config, collection string) error {
	repo, err := openCollection(cfg, collection)
	if err != nil {
		return err
	}
	defer repo.Close()

	var collections ports.CollectionManager = repo
	return collections.DeleteCollection(ctx)
}
