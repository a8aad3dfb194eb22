package loadgen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hashebooks/hashebooks-backend/internal/observability"
	"github.com/hashebooks/hashebooks-backend/internal/tools/common"
	"github.com/hashebooks/hashebooks-backend/internal/tools/ui"
)

type options struct {
	baseURL     string
	profile     string
	token       string
	floor       time.Duration
	duration    time.Duration
	rps         int
	concurrency int
	ci          bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "loadgen", Short: "Generate traffic against the privileged endpoints and check the response floor"}
	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "http://localhost:8080", "API base URL")
	cmd.PersistentFlags().StringVar(&opts.profile, "profile", "mixed", "traffic profile: mixed|unauthenticated|invalid-input|authenticated|preflight")
	cmd.PersistentFlags().StringVar(&opts.token, "token", "", "bearer token for the authenticated profile")
	cmd.PersistentFlags().DurationVar(&opts.floor, "floor", 200*time.Millisecond, "minimum expected response time")
	cmd.PersistentFlags().DurationVar(&opts.duration, "duration", 15*time.Second, "traffic duration")
	cmd.PersistentFlags().IntVar(&opts.rps, "rps", 20, "requests per second")
	cmd.PersistentFlags().IntVar(&opts.concurrency, "concurrency", 6, "concurrent workers")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(newRunCommand(opts))
	return cmd
}

func newRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run load generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			details, err := run(opts, "loadgen run", func(ctx context.Context) ([]string, error) {
				res, err := Run(ctx, Config{
					BaseURL:     opts.baseURL,
					Profile:     opts.profile,
					Token:       opts.token,
					Floor:       opts.floor,
					Duration:    opts.duration,
					RPS:         opts.rps,
					Concurrency: opts.concurrency,
				})
				if err != nil {
					return nil, err
				}
				details := summarize(res)
				if res.FloorViolations > 0 {
					return details, errors.New("responses returned faster than the configured floor")
				}
				return details, nil
			})
			outcome := "success"
			if err != nil {
				outcome = "error"
			}
			observability.RecordToolCommandRun(context.Background(), "loadgen", "run", outcome)
			observability.RecordToolCommandDuration(context.Background(), "loadgen", "run", outcome, time.Since(start))
			if opts.ci {
				common.PrintCIResult(err == nil, "loadgen run", details, err)
			}
			if err != nil {
				os.Exit(4)
			}
			return nil
		},
	}
}

func summarize(res Result) []string {
	return []string{
		fmt.Sprintf("total_requests=%d", res.TotalRequests),
		fmt.Sprintf("failures=%d", res.Failures),
		fmt.Sprintf("status_2xx=%d", res.Status2xx),
		fmt.Sprintf("status_4xx=%d", res.Status4xx),
		fmt.Sprintf("status_5xx=%d", res.Status5xx),
		fmt.Sprintf("floor_violations=%d", res.FloorViolations),
		fmt.Sprintf("min_latency=%s", res.MinLatency),
		fmt.Sprintf("max_latency=%s", res.MaxLatency),
	}
}

func run(opts *options, title string, fn func(context.Context) ([]string, error)) ([]string, error) {
	if opts.ci {
		ctx, cancel := context.WithTimeout(context.Background(), opts.duration+15*time.Second)
		defer cancel()
		return fn(ctx)
	}
	return ui.Run(title, fn)
}
