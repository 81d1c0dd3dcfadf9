package main

import (
	"os"

	"testdata-grafana-plugin/pkg/constant"
	"testdata-grafana-plugin/pkg/plugin"

	"github.com/grafana/grafana-plugin-sdk-go/backend/datasource"
	"github.com/grafana/grafana-plugin-sdk-go/backend/log"
)

func main() {
	// Start listening to requests sent from Grafana. This call is blocking so
	// it won't finish until Grafana shuts down the process or the plugin
	// chooses to exit by itself using os.Exit. Manage automatically manages
	// the life cycle of datasource instances.
	if err := datasource.Manage(constant.PluginID, plugin.NewDatasource, datasource.ManageOpts{}); err != nil {
		log.DefaultLogger.Error(err.Error())
		os.Exit(1)
	}
}
