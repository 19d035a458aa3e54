package main

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/camaras-ia/licencias-cli/internal/api"
	"github.com/camaras-ia/licencias-cli/internal/dashboard"
	"github.com/camaras-ia/licencias-cli/internal/metrics"
	"github.com/camaras-ia/licencias-cli/internal/model"
)

// reportOptions holds the flags shared by the report commands.
type reportOptions struct {
	role      string
	chamber   string
	start     string
	end       string
	userType  string
	chamberID string
	format    string
}

var reportOpts reportOptions

func (o reportOptions) actor() (model.Actor, error) {
	role, ok := model.ParseRole(o.role)
	if !ok {
		return model.Actor{}, eris.Errorf("unknown role %q (want admin, view_all or camara)", o.role)
	}
	actor := model.Actor{Role: role, ChamberName: strings.TrimSpace(o.chamber)}
	if role == model.RoleChamber && actor.ChamberName == "" {
		return model.Actor{}, eris.New("--chamber is required for the camara role")
	}
	return actor, nil
}

func (o reportOptions) overviewParams(loc *time.Location) (metrics.OverviewParams, error) {
	r, err := api.ParseDateRange(o.start, o.end, loc)
	if err != nil {
		return metrics.OverviewParams{}, err
	}
	return metrics.OverviewParams{DateRange: r}, nil
}

func (o reportOptions) usageParams(loc *time.Location) (metrics.UsageParams, error) {
	r, err := api.ParseDateRange(o.start, o.end, loc)
	if err != nil {
		return metrics.UsageParams{}, err
	}
	ut, err := api.ParseUserType(o.userType)
	if err != nil {
		return metrics.UsageParams{}, err
	}
	return metrics.UsageParams{DateRange: r, UserType: ut, ChamberID: strings.TrimSpace(o.chamberID)}, nil
}

type reportFunc func(ctx context.Context, svc *dashboard.Service, actor model.Actor, loc *time.Location) (any, error)

func runReport(cmd *cobra.Command, report reportFunc) error {
	if err := cfg.Validate("report"); err != nil {
		return err
	}
	if err := checkFormat(reportOpts.format); err != nil {
		return err
	}
	actor, err := reportOpts.actor()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	svc, loc, err := newService(st)
	if err != nil {
		return err
	}

	out, err := report(ctx, svc, actor, loc)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), reportOpts.format, out)
}

func checkFormat(format string) error {
	switch format {
	case "json", "yaml":
		return nil
	default:
		return eris.Errorf("unsupported format %q (want json or yaml)", format)
	}
}

func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(v), "encode json")
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return eris.Wrap(enc.Close(), "encode yaml")
	default:
		return checkFormat(format)
	}
}

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Print license utilization and application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd, func(ctx context.Context, svc *dashboard.Service, actor model.Actor, loc *time.Location) (any, error) {
			p, err := reportOpts.overviewParams(loc)
			if err != nil {
				return nil, err
			}
			return svc.Overview(ctx, actor, p)
		})
	},
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Print learning-platform usage metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd, func(ctx context.Context, svc *dashboard.Service, actor model.Actor, loc *time.Location) (any, error) {
			p, err := reportOpts.usageParams(loc)
			if err != nil {
				return nil, err
			}
			return svc.Usage(ctx, actor, p)
		})
	},
}

var businessCmd = &cobra.Command{
	Use:   "business",
	Short: "Print business-environment metrics from company surveys",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd, func(ctx context.Context, svc *dashboard.Service, actor model.Actor, _ *time.Location) (any, error) {
			return svc.Business(ctx, actor)
		})
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print all three metric bundles",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd, func(ctx context.Context, svc *dashboard.Service, actor model.Actor, loc *time.Location) (any, error) {
			ov, err := reportOpts.overviewParams(loc)
			if err != nil {
				return nil, err
			}
			us, err := reportOpts.usageParams(loc)
			if err != nil {
				return nil, err
			}
			return svc.Dashboard(ctx, actor, metrics.Params{Overview: ov, Usage: us})
		})
	},
}

func addReportFlags(cmd *cobra.Command, withDates, withUsage bool) {
	f := cmd.Flags()
	f.StringVar(&reportOpts.role, "role", "admin", "actor role: admin, view_all or camara")
	f.StringVar(&reportOpts.chamber, "chamber", "", "chamber name for the camara role")
	f.StringVar(&reportOpts.format, "format", "json", "output format: json or yaml")
	if !withDates {
		return
	}
	f.StringVar(&reportOpts.start, "start", "", "start date (YYYY-MM-DD)")
	f.StringVar(&reportOpts.end, "end", "", "end date, inclusive (YYYY-MM-DD)")
	if withUsage {
		f.StringVar(&reportOpts.userType, "user-type", "", "usage filter: colaborador or empresa")
		f.StringVar(&reportOpts.chamberID, "chamber-id", "", "usage filter: chamber id")
	}
}

func init() {
	addReportFlags(overviewCmd, true, false)
	addReportFlags(usageCmd, true, true)
	addReportFlags(businessCmd, false, false)
	addReportFlags(dashboardCmd, true, true)
	rootCmd.AddCommand(overviewCmd, usageCmd, businessCmd, dashboardCmd)
}
