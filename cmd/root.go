package cmd

import (
	"context"
	"fmt"
	"io"
	u "net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tanq16/resumer/internal/config"
	"github.com/tanq16/resumer/internal/output"
	"github.com/tanq16/resumer/internal/source"
	"github.com/tanq16/resumer/internal/utils"
)

var (
	configPath    string
	debug         bool
	logFile       string
	stagingDir    string
	completedDir  string
	urlListFile   string
	s3URI         string
	s3Profile     string
	presignTTL    time.Duration
	timeout       time.Duration
	kaTimeout     time.Duration
	userAgent     string
	proxyURL      string
	proxyUsername string
	proxyPassword string
	bearerToken   string
	headers       []string
)

var (
	settings         config.Config
	globalHTTPConfig utils.HTTPClientConfig
)

var ResumerVersion = "dev"

var rootCmd = &cobra.Command{
	Use:               "resumer",
	Short:             "Resumer downloads URL batches concurrently and resumes partial files",
	Version:           ResumerVersion,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadSettings(cmd)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this file (rotated)")
	rootCmd.PersistentFlags().StringVarP(&stagingDir, "staging", "s", utils.DefaultStagingDir, "Directory for partial (.part) files")
	rootCmd.PersistentFlags().StringVarP(&completedDir, "completed", "d", utils.DefaultCompleteDir, "Directory for completed files")
	rootCmd.PersistentFlags().StringVarP(&urlListFile, "urllist", "l", "", "File with URLs (YAML, or one URL per line)")
	rootCmd.PersistentFlags().StringVar(&s3URI, "s3", "", "Download every object under s3://BUCKET/PREFIX via presigned URLs")
	rootCmd.PersistentFlags().StringVar(&s3Profile, "profile", "", "AWS profile for --s3")
	rootCmd.PersistentFlags().DurationVar(&presignTTL, "presign-ttl", source.DefaultPresignTTL, "Validity of presigned S3 URLs")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", utils.DefaultTimeout, "Per-attempt transfer timeout (eg. 30s, 10m)")
	rootCmd.PersistentFlags().DurationVarP(&kaTimeout, "keep-alive-timeout", "k", utils.DefaultKATimeout, "Keep-alive timeout for client (eg. 10s, 1m, 80s)")
	rootCmd.PersistentFlags().StringVarP(&userAgent, "user-agent", "a", utils.ToolUserAgent, "User agent ('randomize' picks a browser agent)")
	rootCmd.PersistentFlags().StringVarP(&proxyURL, "proxy", "p", "", "HTTP/HTTPS proxy URL (e.g., proxy.example.com:8080)")
	rootCmd.PersistentFlags().StringVar(&proxyUsername, "proxy-username", "", "Proxy username (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringVar(&proxyPassword, "proxy-password", "", "Proxy password (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringVar(&bearerToken, "token", "", "Bearer token sent with every request")
	rootCmd.PersistentFlags().StringArrayVarP(&headers, "header", "H", []string{}, "Custom headers (like 'Authorization: Basic dXNlcjpwYXNz'); can be specified multiple times")

	rootCmd.AddCommand(newDownloadCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newCleanCmd())
}

// loadSettings merges the config file with explicitly set flags; flags win.
func loadSettings(cmd *cobra.Command) error {
	flags := cmd.Flags()
	cfg, err := config.Load(configPath, flags.Changed("config"))
	if err != nil {
		return err
	}
	if flags.Changed("staging") {
		cfg.Staging = stagingDir
	}
	if flags.Changed("completed") {
		cfg.Completed = completedDir
	}
	if flags.Changed("urllist") {
		cfg.URLList = urlListFile
	}
	if flags.Changed("s3") {
		cfg.S3 = s3URI
	}
	if flags.Changed("profile") {
		cfg.S3Profile = s3Profile
	}
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}
	if flags.Changed("user-agent") || cfg.UserAgent == "" {
		cfg.UserAgent = userAgent
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}
	for k, v := range utils.ParseHeaderArgs(headers) {
		cfg.Headers[k] = v
	}
	for _, p := range []*string{&cfg.Staging, &cfg.Completed, &cfg.URLList, &cfg.LogFile} {
		if *p, err = utils.ExpandPath(*p); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	settings = cfg

	if settings.UserAgent == "randomize" {
		settings.UserAgent = utils.GetRandomUserAgent()
	}
	// Check if proxy URL contains auth
	parsedProxy, err := u.Parse(proxyURL)
	if err == nil && parsedProxy.User != nil && proxyUsername == "" {
		proxyUsername = parsedProxy.User.Username()
		if password, set := parsedProxy.User.Password(); set {
			proxyPassword = password
		}
		// Remove auth from URL to send in clientConfig
		parsedProxy.User = nil
		proxyURL = parsedProxy.String()
	}
	globalHTTPConfig = utils.HTTPClientConfig{
		Timeout:       settings.Timeout,
		KATimeout:     kaTimeout,
		ProxyURL:      proxyURL,
		ProxyUsername: proxyUsername,
		ProxyPassword: proxyPassword,
		UserAgent:     settings.UserAgent,
		BearerToken:   bearerToken,
		Headers:       settings.Headers,
	}
	return nil
}

func setupLogging(console io.Writer) func() error {
	_, closeLog := output.InitLogger(output.LogConfig{
		Debug:   debug,
		File:    settings.LogFile,
		Console: console,
	})
	return closeLog
}

// collectURLs gathers the batch from arguments, the config file, the URL list
// and the S3 prefix, in that order. Offline callers never list the S3 prefix.
func collectURLs(ctx context.Context, args []string, offline bool) ([]string, error) {
	sources := source.Multi{source.Static(args), source.Static(settings.URLs)}
	if settings.URLList != "" {
		sources = append(sources, source.ListFile{Path: settings.URLList})
	}
	if settings.S3 != "" && offline {
		output.PrintWarning(fmt.Sprintf("Skipping %s: listing S3 needs the network", settings.S3))
	} else if settings.S3 != "" {
		s3Source, err := source.NewS3Prefix(ctx, settings.S3, settings.S3Profile, presignTTL)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s3Source)
	}
	return sources.URLs(ctx)
}
