package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/camaras-ia/licencias-cli/internal/model"
)

var (
	seedFile    string
	seedMigrate bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a JSON dataset export into the configured store",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("migrate"); err != nil {
			return err
		}
		ctx := cmd.Context()

		ds, err := readDataset(seedFile)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if seedMigrate {
			if err := st.Migrate(ctx); err != nil {
				return err
			}
		}
		if err := st.SaveDataset(ctx, ds); err != nil {
			return err
		}

		zap.L().Info("dataset seeded",
			zap.String("file", seedFile),
			zap.Int("chambers", len(ds.Chambers)),
			zap.Int("companies", len(ds.Companies)),
			zap.Int("applications", len(ds.Applications)),
			zap.Int("profiles", len(ds.Profiles)),
			zap.Int("activities", len(ds.Activities)),
		)
		return nil
	},
}

func readDataset(path string) (*model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "seed: open dataset")
	}
	defer f.Close() //nolint:errcheck

	var ds model.Dataset
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ds); err != nil {
		return nil, eris.Wrapf(err, "seed: decode %s", path)
	}
	return &ds, nil
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "dataset JSON file (required)")
	seedCmd.Flags().BoolVar(&seedMigrate, "migrate", false, "create tables before loading")
	_ = seedCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(seedCmd)
}
