package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd performs the conversion itself; doxytag2zealdb is a
// single-purpose tool, so there is no separate convert subcommand.
var rootCmd = &cobra.Command{
	Use:   "doxytag2zealdb",
	Short: "Create a Zeal/Dash search index from a Doxygen tag file",
	Long: `doxytag2zealdb reads a Doxygen-generated XML tag file and fills an SQLite
database with the categorized search index that Zeal, Dash, and helm-dash
expect inside a docset.

The converter recognizes class, file, namespace, struct, and union compounds
plus function, define, enumeration, enumvalue, typedef, and variable members,
and writes one searchIndex row per entity. Exact duplicates are collapsed.

Examples:
  # Convert a tag file into a docset index
  doxytag2zealdb --tag foo.tag --db Foo.docset/Contents/Resources/docSet.dsidx

  # Qualify members with their parent scope and include function signatures
  doxytag2zealdb --tag foo.tag --db docSet.dsidx \
      --include-parent-scopes --include-function-signatures

  # Show every inserted entry and per-rule counts
  doxytag2zealdb -v --tag foo.tag --db docSet.dsidx
`,
	RunE:          runConvert,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.doxytag2zealdb.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print inserted entries and per-rule counts to stderr")

	// Bind flags to viper
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in home directory with name ".doxytag2zealdb"
		// (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".doxytag2zealdb")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}
