package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/korthochain/srpverifier/pkg/config"
	"github.com/korthochain/srpverifier/pkg/journal"
	"github.com/korthochain/srpverifier/pkg/limiter"
	"github.com/korthochain/srpverifier/pkg/logger"
	"github.com/korthochain/srpverifier/pkg/verifier"
	"github.com/korthochain/srpverifier/pkg/workerpool"
)

var (
	cfgFile string
	// Verbose mirrors log output to stdout at DEBUG level
	Verbose bool
)

var rootCmd = &cobra.Command{
	Use:           "srpverifier",
	Short:         "Compute SRP-6a registration salts and verifiers",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/srpConf.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(modpowCmd)
	rootCmd.AddCommand(groupCmd)
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

// app holds everything a command needs; close releases it in reverse order.
type app struct {
	cfg     *config.CfgInfo
	pool    *workerpool.Pool
	journal journal.Journal
	service *verifier.Service
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	if Verbose {
		cfg.LogConfig.Level = "DEBUG"
		cfg.LogConfig.Stdout = true
	}
	if err := logger.InitLogger(cfg.LogConfig); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	a.pool = workerpool.New(cfg.PoolConfig, workerpool.GoroutineRuntime{})

	a.journal, err = journal.Open(cfg.JournalConfig)
	if err != nil {
		a.close()
		return nil, err
	}

	a.service, err = verifier.New(a.pool, verifier.Options{
		KDF:        cfg.KDFConfig,
		SaltLength: cfg.SaltConfig.Length,
		Limiter:    limiter.New(cfg.LimiterConfig),
		Journal:    a.journal,
	})
	if err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) close() {
	if a.journal != nil {
		a.journal.Close()
	}
	if a.pool != nil {
		a.pool.Destroy()
	}
	logger.Sync()
}
