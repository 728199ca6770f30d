package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/worklens/worklens/internal/analysis"
	"github.com/worklens/worklens/internal/api"
	"github.com/worklens/worklens/internal/config"
	"github.com/worklens/worklens/internal/directory"
	"github.com/worklens/worklens/internal/inventory"
	"github.com/worklens/worklens/internal/logging"
	"github.com/worklens/worklens/internal/pipeline"
	"github.com/worklens/worklens/internal/sampler"
	"github.com/worklens/worklens/internal/store"
)

// CLI flags
var (
	portFlag      int
	employeesFlag string
	datesFlag     string
	forceFlag     bool
)

var rootCmd = &cobra.Command{
	Use:   "worklens",
	Short: "Screen-recording ingestion and work-activity analysis service",
	Long: `WorkLens discovers employee screen recordings in S3, samples keyframes
with ffmpeg, derives a structured work-activity event log via Gemini, and
persists the results to DynamoDB exactly once per recording.

By default it serves the HTTP API. With --employee and --date it runs the
batches directly and exits.

Examples:
  worklens
  worklens --port 9090
  worklens --employee emp1,emp2 --date 2024-01-15
  worklens --employee emp1 --date 2024-01-15,2024-01-16 --force`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().IntVar(&portFlag, "port", 8080, "Port to listen on")
	rootCmd.Flags().StringVar(&employeesFlag, "employee", "", "Comma-separated employee IDs (batch mode)")
	rootCmd.Flags().StringVar(&datesFlag, "date", "", "Comma-separated dates, YYYY-MM-DD (batch mode)")
	rootCmd.Flags().BoolVar(&forceFlag, "force", false, "Reprocess recordings already in the ledger")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMain(cmd *cobra.Command, args []string) {
	logging.Init()
	settings := config.Load()

	ctx := context.Background()
	awsHTTPClient := awshttp.NewBuildableClient().
		WithTimeout(settings.S3ReadTimeout).
		WithDialerOptions(func(d *net.Dialer) { d.Timeout = settings.S3ConnectTimeout })
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(settings.AWSRegion),
		awsconfig.WithHTTPClient(awsHTTPClient),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}

	geminiClient, err := analysis.NewGeminiClient(ctx, settings.GeminiAPIKey)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	s3Client := s3.NewFromConfig(awsCfg)
	dynamoClient := dynamodb.NewFromConfig(awsCfg)

	lister := inventory.NewLister(s3Client, settings.S3Bucket, settings.S3Prefix)
	runner := pipeline.NewRunner(
		lister,
		lister,
		sampler.FFmpeg{},
		analysis.NewAnalyzer(geminiClient, settings.GeminiModel, settings.VisionEnabled),
		store.NewDynamoLedger(dynamoClient, settings.LedgerTable),
		store.NewDynamoEventStore(dynamoClient, settings.EventLogTable),
		directory.Load(settings.EmployeeMapPath),
		settings.FrameIntervalSec,
	)

	if employeesFlag != "" || datesFlag != "" {
		runBatches(ctx, runner)
		return
	}
	serveHTTP(runner)
}

// runBatches runs the cartesian product of the --employee and --date lists
// and exits non-zero when any batch fails outright or records file errors.
func runBatches(ctx context.Context, runner *pipeline.Runner) {
	employees := splitFlag(employeesFlag)
	dates := splitFlag(datesFlag)
	if len(employees) == 0 || len(dates) == 0 {
		log.Fatal().Msg("Batch mode needs both --employee and --date")
	}

	failed := false
	for _, employeeID := range employees {
		for _, date := range dates {
			res, err := runner.Run(ctx, employeeID, date, forceFlag)
			if err != nil {
				log.Error().Err(err).Str("employeeId", employeeID).Str("date", date).Msg("Batch failed")
				failed = true
				continue
			}
			if len(res.Errors) > 0 {
				failed = true
			}
			fmt.Printf("%s %s: processed %d, skipped %d, errors %d\n",
				employeeID, date, res.ProcessedCount, len(res.Skipped), len(res.Errors))
			for _, msg := range res.Errors {
				fmt.Printf("  error: %s\n", msg)
			}
		}
	}
	if failed {
		os.Exit(1)
	}
}

func serveHTTP(runner *pipeline.Runner) {
	handler := api.WithLogging(api.NewServer(runner).Routes())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", portFlag),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	log.Info().Int("port", portFlag).Msg("Starting HTTP server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func splitFlag(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
