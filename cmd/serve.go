package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nathannewyen/contribfeed/config"
	"github.com/nathannewyen/contribfeed/internal/aggregate"
	"github.com/nathannewyen/contribfeed/internal/cache"
	"github.com/nathannewyen/contribfeed/internal/constants"
	"github.com/nathannewyen/contribfeed/internal/gerrit"
	"github.com/nathannewyen/contribfeed/internal/github"
	"github.com/nathannewyen/contribfeed/internal/log"
	"github.com/nathannewyen/contribfeed/internal/model"
	"github.com/nathannewyen/contribfeed/internal/normalize"
	"github.com/nathannewyen/contribfeed/internal/server"
	"github.com/nathannewyen/contribfeed/internal/stackexchange"
)

// NewCmdServe creates the serve command.
func NewCmdServe(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the contribution API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	addServeFlags(cmd, opts)
	return cmd
}

func addServeFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to the config file (default "+config.DefaultConfigPath+")")
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "Listen address (overrides the config file)")
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Suppress all log output")
}

// disabledRelay serves the Gerrit relay endpoint when no Gerrit account
// is configured. An empty list keeps the endpoint shape stable.
type disabledRelay struct{}

func (disabledRelay) FetchChanges(ctx context.Context) ([]model.Contribution, error) {
	return nil, nil
}

func runServe(cmd *cobra.Command, opts *Options) error {
	if opts.Quiet {
		log.Initialize(opts.Verbosity, io.Discard)
	} else {
		log.Initialize(opts.Verbosity, os.Stderr)
	}

	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.Addr != "" {
		cfg.Server.Addr = opts.Addr
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	grouping := normalize.Grouping{
		Repos: cfg.Grouping.Repos,
		Orgs:  cfg.Grouping.Orgs,
	}

	gh := github.NewClient(ctx, cfg.GitHub.Username, cfg.GitHubToken(), grouping)

	var gerritSource aggregate.GerritSource
	var relay server.GerritRelay = disabledRelay{}
	if cfg.GerritEnabled() {
		gc := gerrit.NewClient(cfg.Gerrit.BaseURL, cfg.Gerrit.Email, cfg.Gerrit.Project, grouping)
		gerritSource = gc
		relay = gc
	}

	agg := aggregate.New(gh, gerritSource, cfg.GitHub.OwnRepos, constants.EnrichmentLimit)

	contributions := cache.New("contributions", agg.Aggregate, cfg.AggregatedProfile())
	projects := cache.New("stars", func(ctx context.Context) ([]model.Project, error) {
		return gh.ProjectStars(ctx, cfg.GitHub.Projects)
	}, cfg.StandardProfile())

	var answers *cache.Store[[]model.ProfileAnswer]
	var user *cache.Store[*model.ProfileUser]
	if cfg.StackExchangeEnabled() {
		se := stackexchange.NewClient(strconv.Itoa(cfg.StackExchange.UserID), cfg.StackExchange.Site, cfg.StackExchangeKey())
		answers = cache.New("answers", se.FetchAnswers, cfg.StandardProfile())
		user = cache.New("profile-user", se.FetchUser, cfg.StandardProfile())
	} else {
		answers = cache.New("answers", func(ctx context.Context) ([]model.ProfileAnswer, error) {
			return nil, nil
		}, cfg.StandardProfile())
		user = cache.New("profile-user", func(ctx context.Context) (*model.ProfileUser, error) {
			return nil, nil
		}, cfg.StandardProfile())
	}

	for _, run := range []func(context.Context){
		contributions.Run,
		projects.Run,
		answers.Run,
		user.Run,
	} {
		go run(ctx)
	}

	srv := server.New(server.Options{
		Contributions:     contributions,
		Answers:           answers,
		User:              user,
		Projects:          projects,
		Gerrit:            relay,
		HeatmapWindowDays: constants.HeatmapWindowDays,
		HeatmapRows:       constants.HeatmapRows,
		ItemsPerPage:      constants.ItemsPerPage,
	})

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Router(),
	}

	if !opts.Quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "%s listening on %s (user: %s)\n",
			color.CyanString("contribfeed"), cfg.Server.Addr, cfg.GitHub.Username)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
