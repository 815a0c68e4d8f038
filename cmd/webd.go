/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"log"
	"log/slog"

	"github.com/motionlog/motiond/daemon/webd"
	"github.com/motionlog/motiond/params"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var optHTTPAddr string
var optToken string

// webdCmd represents the serve command
var webdCmd = &cobra.Command{
	Use:   "webd",
	Short: "Start the webserver",
	Long:  `Serves movers on the internet`,
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		initRgeoMaybe()
		slog.Info("webd.Run")
		server := webd.NewWebDaemon(&params.WebDaemonConfig{
			DataDir: params.DatadirRoot,
			ListenerConfig: params.ListenerConfig{
				Address: optHTTPAddr,
				Network: "tcp",
			},
			Token: viper.GetString("token"),
		})

		if err := server.Run(); err != nil {
			log.Fatalln(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(webdCmd)

	defaults := params.DefaultWebDaemonConfig()

	pFlags := webdCmd.PersistentFlags()
	pFlags.AddFlagSet(&pflag.FlagSet{})
	pFlags.StringVar(&optHTTPAddr, "address", defaults.Address, "HTTP address to listen on")
	pFlags.StringVar(&optToken, "token", "", "Populate auth token; empty allows all (env MOTIOND_TOKEN)")
	pFlags.BoolVar(&optRgeo, "rgeo", false, "Load the offline reverse geocoder (heavy) to name journey places")
	viper.BindPFlag("token", pFlags.Lookup("token"))
}
