// Package cmd defines the command-line interface for drawbias.
package cmd

import (
	"github.com/huangsam/drawbias/internal/contract"
	"github.com/huangsam/drawbias/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(baselineCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(tiersCmd)
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(drawsCmd)
	rootCmd.AddCommand(hypothesesCmd)
	rootCmd.AddCommand(modesCmd)
	rootCmd.AddCommand(triggersCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	profilesCmd.AddCommand(profilesShowCmd)
	profilesCmd.AddCommand(profilesExportCmd)

	drawsCmd.AddCommand(drawsAddCmd)
	drawsCmd.AddCommand(drawsImportCmd)
	drawsCmd.AddCommand(drawsListCmd)
	drawsCmd.AddCommand(drawsExportCmd)
	drawsCmd.AddCommand(drawsDeleteCmd)
	drawsCmd.AddCommand(drawsClearCmd)
	drawsCmd.AddCommand(drawsDuplicatesCmd)
	drawsCmd.AddCommand(drawsMarkTestCmd)

	hypothesesCmd.AddCommand(hypothesesListCmd)
	hypothesesCmd.AddCommand(hypothesesAddCmd)
	hypothesesCmd.AddCommand(hypothesesUpdateCmd)
	hypothesesCmd.AddCommand(hypothesesResolveCmd)
	hypothesesCmd.AddCommand(hypothesesOutcomesCmd)

	modesCmd.AddCommand(modesListCmd)
	modesCmd.AddCommand(modesAddCmd)
	modesCmd.AddCommand(modesExampleCmd)
	modesCmd.AddCommand(modesExampleDeleteCmd)
	modesCmd.AddCommand(modesEvaluateCmd)
	modesCmd.AddCommand(modesSuggestCmd)
	modesCmd.AddCommand(modesDeleteCmd)

	triggersCmd.AddCommand(triggersListCmd)
	triggersCmd.AddCommand(triggersAddCmd)
	triggersCmd.AddCommand(triggersSeedCmd)
	triggersCmd.AddCommand(triggersEventsCmd)
	triggersCmd.AddCommand(triggersStatsCmd)
	triggersCmd.AddCommand(triggersDeleteCmd)

	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheRebuildCmd)

	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeMigrateCmd)

	metricsCmd.AddCommand(metricsServeCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("now", "", "Reference instant as YYYY-MM-DD or RFC3339 (default: current time)")
	rootCmd.PersistentFlags().Int("window-days", contract.DefaultWindowDays, "Trailing window in days used by the bias classifier")
	rootCmd.PersistentFlags().String("context", "", "Analysis context (format: 'country=cr,weekday=lun,year=2024,target-slot=3PM')")
	rootCmd.PersistentFlags().String("guide", "", "Path to a YAML or JSON symbol guide")
	rootCmd.PersistentFlags().Bool("include-test", false, "Include draws marked as test rows")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Ledger store backend: sqlite or mysql or postgresql")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for the ledger store (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Knowledge cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for the knowledge cache (must differ from store-db-connect)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Diagnostic log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("emoji", "yes", "Enable emoji headers in text output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Local flags of the ledger commands are read straight from cobra since
	// several subcommands share names like --number and --date.
	drawsAddCmd.Flags().String("date", "", "Draw date as YYYY-MM-DD or DD/MM/YYYY")
	drawsAddCmd.Flags().String("slot", "", "Draw slot: 11AM or 3PM or 9PM")
	drawsAddCmd.Flags().String("country", "", "Draw country")
	drawsAddCmd.Flags().String("number", "", "Drawn number between 00 and 99")
	drawsAddCmd.Flags().Bool("test", false, "Store the draw as a test row")
	drawsAddCmd.Flags().Bool("force", false, "Insert even when a duplicate exists")
	drawsAddCmd.Flags().Bool("dry-run", false, "Validate and check duplicates without writing")
	drawsAddCmd.Flags().Bool("resolve", false, "Resolve pending hypotheses against this draw")

	drawsImportCmd.Flags().Bool("test", false, "Store every imported draw as a test row")
	drawsImportCmd.Flags().Bool("force", false, "Insert even when duplicates exist")
	drawsImportCmd.Flags().Bool("dry-run", false, "Validate and count without writing")

	drawsClearCmd.Flags().Bool("yes", false, "Confirm deletion of every draw")
	drawsMarkTestCmd.Flags().Bool("unset", false, "Clear the test flag instead of setting it")

	hypothesesAddCmd.Flags().String("number", "", "Predicted number between 00 and 99")
	hypothesesAddCmd.Flags().String("symbol", "", "Optional symbol for the number")
	hypothesesAddCmd.Flags().String("date", "", "Target date (default: date of --now)")
	hypothesesAddCmd.Flags().String("slot", "", "Optional target slot")
	hypothesesAddCmd.Flags().StringSlice("reason", nil, "Reason behind the hypothesis (repeatable)")

	hypothesesUpdateCmd.Flags().String("symbol", "", "New symbol")
	hypothesesUpdateCmd.Flags().String("state", "", "New state: pendiente or confirmada or refutada")
	hypothesesUpdateCmd.Flags().String("date", "", "New target date")
	hypothesesUpdateCmd.Flags().String("slot", "", "New target slot")
	hypothesesUpdateCmd.Flags().StringSlice("reason", nil, "Replace the reasons (repeatable)")

	hypothesesResolveCmd.Flags().String("number", "", "Observed number between 00 and 99")
	hypothesesResolveCmd.Flags().String("date", "", "Observed date (default: date of --now)")
	hypothesesResolveCmd.Flags().String("country", "", "Observed country")
	hypothesesResolveCmd.Flags().String("slot", "", "Observed slot")

	modesAddCmd.Flags().String("name", "", "Mode name")
	modesAddCmd.Flags().String("kind", "", "Mode kind (default: manual)")
	modesAddCmd.Flags().String("description", "", "Free text description")
	modesAddCmd.Flags().String("operation", "", "Built-in operation: mirror or digit-sum or add or sub or neighbor or digit-map")
	modesAddCmd.Flags().StringToInt("param", nil, "Operation parameter as key=value (repeatable)")
	modesAddCmd.Flags().Int("offset", 0, "Days between the base draw and the result draw")

	modesExampleCmd.Flags().String("original", "", "Original number")
	modesExampleCmd.Flags().String("result", "", "Resulting number")
	modesExampleCmd.Flags().String("note", "", "Optional note")

	triggersListCmd.Flags().Bool("active", false, "Only list active relations")
	triggersEventsCmd.Flags().String("status", "", "Filter by status: OPEN or HIT or LATE_HIT or MISS")

	triggersAddCmd.Flags().String("origin", "", "Origin number")
	triggersAddCmd.Flags().String("target", "", "Target number")
	triggersAddCmd.Flags().String("type", string(schema.TriggersRelation), "Relation type: DISPARA or AVISA or REFUERZA")
	triggersAddCmd.Flags().Int("window-min", 0, "Minimum lag in days")
	triggersAddCmd.Flags().Int("window-max", 5, "Maximum lag in days")
	triggersAddCmd.Flags().String("notes", "", "Free text notes")
	triggersAddCmd.Flags().Bool("inactive", false, "Store the relation as inactive")

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}

	// Bind all flags of metricsServeCmd to Viper
	metricsServeCmd.Flags().String("addr", ":9090", "Address the metrics endpoint listens on")
	if err := viper.BindPFlags(metricsServeCmd.Flags()); err != nil {
		contract.LogFatal("Error binding metrics serve flags", err)
	}
}
