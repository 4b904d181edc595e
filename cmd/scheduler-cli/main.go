package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/schedcu/surgical-scheduler/internal/engine"
	"github.com/schedcu/surgical-scheduler/internal/entity"
	"github.com/schedcu/surgical-scheduler/internal/repository/memory"
)

// fixture is the on-disk shape --fixture loads: a minimal resource
// catalog plus pending surgeries, enough to drive an optimize run
// against the in-memory repository without a database.
type fixture struct {
	Surgeries []entity.Surgery       `json:"surgeries"`
	Rooms     []entity.OperatingRoom `json:"rooms"`
	Staff     []entity.Staff         `json:"staff"`
	Equipment []entity.Equipment     `json:"equipment"`
	Rules     []entity.Rule          `json:"rules"`
	SDST      []sdstEntry            `json:"sdst"`
}

// sdstEntry is one (from,to)->minutes row; entity.SDSTMatrix itself
// keeps its backing map unexported, so the fixture round-trips through
// this flat shape and entity.NewSDSTMatrix instead.
type sdstEntry struct {
	From    entity.SurgeryTypeID `json:"from"`
	To      entity.SurgeryTypeID `json:"to"`
	Minutes int                  `json:"minutes"`
}

func (f fixture) sdstMatrix() (entity.SDSTMatrix, error) {
	entries := make(map[entity.SDSTKey]int, len(f.SDST))
	for _, e := range f.SDST {
		entries[entity.SDSTKey{From: e.From, To: e.To}] = e.Minutes
	}
	return entity.NewSDSTMatrix(entries)
}

func main() {
	root := &cobra.Command{
		Use:   "scheduler-cli",
		Short: "Run the surgical scheduling engine against an in-memory fixture",
	}
	root.AddCommand(optimizeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func optimizeCmd() *cobra.Command {
	var fixturePath string
	var dateFlag string
	var maxIterations int

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Run a single Tabu optimize pass over a fixture and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := time.Parse("2006-01-02", dateFlag)
			if err != nil {
				return fmt.Errorf("--date must be formatted YYYY-MM-DD: %w", err)
			}

			store := memory.New()
			if fixturePath != "" {
				f, err := loadFixture(fixturePath)
				if err != nil {
					return err
				}
				sdst, err := f.sdstMatrix()
				if err != nil {
					return fmt.Errorf("build sdst matrix: %w", err)
				}
				store.WithSurgeries(f.Surgeries...).
					WithRooms(f.Rooms...).
					WithStaff(f.Staff...).
					WithEquipment(f.Equipment...).
					WithRules(f.Rules...).
					WithSDST(sdst)
			}

			e := engine.New(store, engine.DefaultConfig())

			req := engine.OptimizeRequest{
				DateRangeStart: date,
				DateRangeEnd:   date.AddDate(0, 0, 1),
			}
			if maxIterations > 0 {
				req.MaxIterations = &maxIterations
			}

			resp, err := e.Optimize(context.Background(), req)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}

	cmd.Flags().StringVar(&fixturePath, "fixture", "", "path to a JSON fixture of surgeries, rooms, staff, equipment, rules, and SDST")
	cmd.Flags().StringVar(&dateFlag, "date", time.Now().Format("2006-01-02"), "date to optimize, formatted YYYY-MM-DD")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "override the Tabu search's max iterations (0 keeps the engine default)")

	return cmd
}

func loadFixture(path string) (fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	var f fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	return f, nil
}
