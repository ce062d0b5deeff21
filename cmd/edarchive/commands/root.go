package commands

import (
	"context"
	"fmt"
	"os"

	"edarchive/internal/components/telemetry"
	"edarchive/internal/edapi"
	"edarchive/pkg/restyutil"
	"edarchive/pkg/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "edarchive.json5"

var (
	configPath *string
	verbose    *bool
	dumpHttp   *string

	cfg     Config
	tel     telemetry.API = telemetry.SlogAPI{}
	tracing telemetry.Tracing
)

func init() {
	configPath = rootCmd.PersistentFlags().String("config", defaultConfigPath, "The config file to read, <name>.local.<ext> is merged on top.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log every request and skipped item.")
	dumpHttp = rootCmd.PersistentFlags().String("dump-http", "", "A folder to write every api exchange into, it is emptied first.")
}

var rootCmd = &cobra.Command{
	Use:   "edarchive",
	Short: "edarchive archives Ed Discussion course threads and builds the participation website data.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)

		required := cmd.Flags().Changed("config")
		loaded, err := LoadConfig(*configPath, required)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		cfg = loaded

		tracing, err = telemetry.SetupTracing(cmd.Context(), "edarchive", cfg.Tracing)
		if err != nil {
			serviceutil.Fatal("failed to setup tracing", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		err := tracing.Shutdown(context.Background())
		if err != nil {
			tel.ReportWarning("tracing.shutdown", err)
		}
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func NewTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

// login creates an api client from the config and checks its token, a
// missing or rejected token ends the process.
func login(ctx context.Context) *edapi.Client {
	opts := edapi.ClientOptions{
		BaseUrl:           cfg.BaseUrl,
		Token:             cfg.Token,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}
	if *dumpHttp != "" {
		output, err := restyutil.NewFilesystemOutput(*dumpHttp)
		if err != nil {
			serviceutil.Fatal("failed to create http dump folder", err)
		}
		opts.Dump = output
	}

	client, err := edapi.NewClient(opts, tel)
	if err != nil {
		serviceutil.Fatal("failed to create ed client", err)
	}

	user, err := client.Login(ctx)
	if err != nil {
		serviceutil.Fatal("authentication failed, check "+tokenEnv, err)
	}
	tel.ReportDebug("logged in", user.Name, user.Email)
	fmt.Printf("Logged in as %s\n", user.Name)
	return client
}
