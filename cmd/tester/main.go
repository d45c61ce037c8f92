// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/daviszhen/olap/pkg/util"
)

func init() {
	cobra.OnInitialize(loadConfig)
	initBitAggCmd()
	initCompressionCmd()
}

var testerCfg = util.DefaultConfig()

///root cmd

var info = "tester"
var RootCmd = &cobra.Command{
	Use:          "tester",
	Short:        info,
	Long:         info,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("use tester --help or -h")
	},
}

// initCommonOptions returns a snapshot of the loaded config with the
// viper keys (flags included) applied on top.
func initCommonOptions() (*util.Config, error) {
	cfg := testerCfg.Copy()
	if viper.IsSet("log.level") {
		cfg.Log.Level = viper.GetString("log.level")
	}
	if viper.IsSet("log.format") {
		cfg.Log.Format = viper.GetString("log.format")
	}
	if viper.IsSet("storage.disabled_compression") {
		cfg.Storage.DisabledCompression = viper.GetStringSlice("storage.disabled_compression")
	}
	if viper.IsSet("aggregate.threads") {
		cfg.Aggregate.Threads = viper.GetInt("aggregate.threads")
	}
	if viper.IsSet("aggregate.vector_size") {
		cfg.Aggregate.VectorSize = viper.GetInt("aggregate.vector_size")
	}
	if viper.IsSet("debug.print_result") {
		cfg.Debug.PrintResult = viper.GetBool("debug.print_result")
	}
	if viper.IsSet("debug.print_layout") {
		cfg.Debug.PrintLayout = viper.GetBool("debug.print_layout")
	}
	cfg.Adjust()
	if err := util.InitLogger(&cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}

var defCfgFilePaths = []string{".", "etc/tester"}
var cfgFileName = "tester.toml"

func loadConfig() {
	if !loadConfigFrom(defCfgFilePaths) {
		util.Warn("tester.toml does not exist. use default config")
	}
}

// loadConfigFrom decodes the first valid tester.toml in dirs into
// testerCfg and hands the same file to viper for the command keys.
func loadConfigFrom(dirs []string) bool {
	for _, dirPath := range dirs {
		fpath := filepath.Join(dirPath, cfgFileName)
		if !util.FileIsValid(fpath) {
			continue
		}
		cfg, err := util.LoadConfig(fpath)
		if err != nil {
			util.Error("load config file failed",
				zap.String("fpath", fpath),
				zap.Error(err))
			continue
		}
		viper.SetConfigFile(fpath)
		if err = viper.ReadInConfig(); err != nil {
			util.Error("viper load config file failed",
				zap.String("fpath", fpath),
				zap.Error(err))
			continue
		}
		testerCfg = cfg
		return true
	}
	return false
}

func main() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
