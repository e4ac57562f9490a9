package command

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hnrobert/idstore/internal/config"
	"github.com/hnrobert/idstore/internal/lifecycle"
	"github.com/hnrobert/idstore/internal/logger"
	"github.com/hnrobert/idstore/internal/provision"
)

var (
	flagConfig   string
	flagDefaults string
	flagDebug    bool

	flagPasswd  string
	flagShadow  string
	flagGroup   string
	flagGShadow string
	flagLock    string
)

var RootCmd = &cobra.Command{
	Use:           "idstore",
	Short:         "Transactional manager for the Linux identity databases",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Setup(flagDebug, "")
	},
}

func init() {
	pf := RootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "path to the idstore YAML config")
	pf.StringVar(&flagDefaults, "defaults", "/etc/default/useradd", "path to the useradd defaults file")
	pf.BoolVar(&flagDebug, "debug", false, "enable debug logging")
	pf.StringVar(&flagPasswd, "passwd", "", "override the passwd file path")
	pf.StringVar(&flagShadow, "shadow", "", "override the shadow file path")
	pf.StringVar(&flagGroup, "group", "", "override the group file path")
	pf.StringVar(&flagGShadow, "gshadow", "", "override the gshadow file path")
	pf.StringVar(&flagLock, "lock", "", "override the lock file path")

	RootCmd.AddCommand(useraddCmd, userdelCmd, usermodCmd, groupaddCmd, groupdelCmd, listCmd)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	defaults, err := config.LoadUseraddDefaults(flagDefaults)
	if err != nil {
		return cfg, err
	}
	defaults.Apply(&cfg)

	if flagPasswd != "" {
		cfg.Paths.Passwd = flagPasswd
	}
	if flagShadow != "" {
		cfg.Paths.Shadow = flagShadow
	}
	if flagGroup != "" {
		cfg.Paths.Group = flagGroup
	}
	if flagGShadow != "" {
		cfg.Paths.GShadow = flagGShadow
	}
	if flagLock != "" {
		cfg.Paths.Lock = flagLock
	}
	return cfg, nil
}

func newManager() (*lifecycle.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return lifecycle.NewManager(cfg, provision.NewHost(cfg.SkelDir)), nil
}

func fail(err error) error {
	log.Error().Err(err).Msg("operation failed")
	return err
}
