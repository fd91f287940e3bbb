package service

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/catalab-ai/catalab/app/core"
	"github.com/catalab-ai/catalab/app/logic/v1/process"
)

type Options struct {
	ConfigPath string
}

func (o *Options) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&o.ConfigPath, "config", "c", "", "init api by given config")
}

func NewCommand() *cobra.Command {
	opts := &Options{}
	cmd := &cobra.Command{
		Use:   "service",
		Short: "catalog qa service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(opts)
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}

func Run(opts *Options) error {
	app := core.MustSetupCore(core.MustLoadBaseConfig(opts.ConfigPath))
	if err := process.NewProcess(app).Start(); err != nil {
		return err
	}
	serve(app)
	return nil
}

// NewInstallCommand 初始化数据库结构
func NewInstallCommand() *cobra.Command {
	opts := &Options{}
	cmd := &cobra.Command{
		Use:   "install",
		Short: "create database tables and extensions",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := core.MustSetupCore(core.MustLoadBaseConfig(opts.ConfigPath))
			if err := app.Install(); err != nil {
				return err
			}
			fmt.Println("install finished")
			return nil
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}
