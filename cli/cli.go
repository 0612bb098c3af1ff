// Package cli implements the mediafetch command line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mediafetch/api"
	"mediafetch/config"
	"mediafetch/media"
	"mediafetch/resolve"
	"mediafetch/retry"
	"mediafetch/store"
	"mediafetch/youtube"
)

var log = logrus.New()

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "mediafetch",
		Short:         "Tiered media resolution pipeline",
		Long:          "mediafetch resolves a media reference to a local playable file,\nfalling through local disk, the durable-store token cache, yt-dlp\nextraction, and a fallback download service.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional; real env always wins.
			_ = godotenv.Load()
			log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newResolveCmd())
	root.AddCommand(newFormatsCmd())
	root.AddCommand(newPlaylistCmd())
	return root
}

// buildResolver wires the full tier chain from configuration. Optional
// collaborators (redis, S3) are only attached when configured.
func buildResolver(ctx context.Context, cfg *config.Config) (*resolve.Resolver, func(), error) {
	runner := &youtube.Runner{
		Path:        cfg.YtdlpPath,
		CookiesPath: cfg.CookiesPath,
		Timeout:     cfg.YtdlpTimeout,
	}

	remote := api.New(api.Config{
		URLEndpoint: cfg.APIURLEndpoint,
		FallbackURL: cfg.FallbackURL,
		BaseURL:     cfg.APIBaseURL,
	}, log)
	remote.ResolveBaseURL(ctx)

	opts := resolve.Options{
		Dir:       cfg.DownloadDir,
		Extractor: youtube.NewDownloader(runner, log),
		Remote:    remote,
		Retry: retry.Policy{
			MaxAttempts: cfg.MaxAttempts,
			BaseDelay:   cfg.BaseDelay,
		},
		Logger: log,
	}

	cleanup := func() {}
	if cfg.RedisURL != "" {
		fileIDs, err := store.NewRedisFileIDStore(cfg.RedisURL, log)
		if err != nil {
			return nil, nil, err
		}
		opts.FileIDs = fileIDs
		cleanup = func() { fileIDs.Close() }

		if cfg.S3Bucket != "" {
			sess, err := session.NewSession()
			if err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("aws session: %w", err)
			}
			opts.Durable = store.NewS3Store(cfg.S3Bucket, cfg.S3Prefix, sess)
		}
	}

	return resolve.New(opts), cleanup, nil
}

func newResolveCmd() *cobra.Command {
	var video bool

	cmd := &cobra.Command{
		Use:   "resolve <id|url|query>",
		Short: "Resolve a media reference to a local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			kind := media.KindAudio
			if video {
				kind = media.KindVideo
			}

			ref := media.NewRef(args[0], kind)
			if needsSearch(args[0], ref) {
				id, err := searchID(ctx, cfg, args[0])
				if err != nil {
					return err
				}
				ref = media.Ref{ID: id, Kind: kind}
			}

			r, cleanup, err := buildResolver(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			defer r.Wait()

			resolved, err := r.Resolve(ctx, ref)
			if err != nil {
				return err
			}
			fmt.Println(resolved.LocalPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&video, "video", false, "resolve the video rendition instead of audio")
	return cmd
}

// needsSearch reports whether arg is a free-text query rather than something
// that already names a video. Links and canonical 11-character ids resolve
// directly, without a Data API round trip.
func needsSearch(arg string, ref media.Ref) bool {
	return !media.IsLink(arg) && !ref.IsCanonicalID()
}

// searchID turns a free-text query into a video id via the Data API.
func searchID(ctx context.Context, cfg *config.Config, query string) (string, error) {
	if cfg.YouTubeAPIKey == "" {
		return "", fmt.Errorf("not a video id or link, and no MEDIAFETCH_YOUTUBE_API_KEY for search: %q", query)
	}
	searcher, err := youtube.NewDataAPISearcher(ctx, cfg.YouTubeAPIKey)
	if err != nil {
		return "", err
	}
	cached := youtube.NewCachedSearcher(searcher, cfg.MetaTTL, cfg.MetaMaxEntries)
	results, err := cached.Search(ctx, query, 1)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", fmt.Errorf("no results for %q", query)
	}
	return results[0].ID, nil
}

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats <id|url>",
		Short: "List downloadable formats for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			runner := &youtube.Runner{
				Path:        cfg.YtdlpPath,
				CookiesPath: cfg.CookiesPath,
				Timeout:     cfg.YtdlpTimeout,
			}
			lister := youtube.NewFormatLister(runner, cfg.MetaTTL, cfg.MetaMaxEntries)

			link := args[0]
			if !media.IsLink(link) {
				link = media.Ref{ID: media.ExtractID(link)}.WatchURL()
			}
			formats, link, err := lister.List(cmd.Context(), link)
			if err != nil && len(formats) == 0 {
				return err
			}
			for _, f := range formats {
				fmt.Printf("%-8s %-6s %-12s %12d  %s\n", f.FormatID, f.Ext, f.FormatNote, f.Filesize, link)
			}
			return nil
		},
	}
}

func newPlaylistCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "playlist <url>",
		Short: "List video ids in a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			runner := &youtube.Runner{
				Path:        cfg.YtdlpPath,
				CookiesPath: cfg.CookiesPath,
				Timeout:     cfg.YtdlpTimeout,
			}
			ids, err := runner.PlaylistIDs(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Println(id)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 25, "maximum number of ids to list")
	return cmd
}
