package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vedvyas/doxytag2zealdb/internal/docset"
	"github.com/vedvyas/doxytag2zealdb/internal/doxytag"
	"github.com/vedvyas/doxytag2zealdb/internal/tagfile"
	"github.com/vedvyas/doxytag2zealdb/internal/zealdb"
)

var (
	tagPath                   string
	dbPath                    string
	includeParentScopes       bool
	includeFunctionSignatures bool
	noPlistPatch              bool
)

func init() {
	rootCmd.Flags().StringVar(&tagPath, "tag", "", "input Doxygen tag file to process")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "output SQLite database")
	rootCmd.Flags().BoolVar(&includeParentScopes, "include-parent-scopes", false, "include parent scope in entry names")
	rootCmd.Flags().BoolVar(&includeFunctionSignatures, "include-function-signatures", false, "include function arguments and return types in entry names")
	rootCmd.Flags().BoolVar(&noPlistPatch, "no-plist-patch", false, "do not mark the enclosing docset as Dash-compatible")
	rootCmd.MarkFlagRequired("tag")
	rootCmd.MarkFlagRequired("db")

	viper.BindPFlag("include-parent-scopes", rootCmd.Flags().Lookup("include-parent-scopes"))
	viper.BindPFlag("include-function-signatures", rootCmd.Flags().Lookup("include-function-signatures"))
	viper.BindPFlag("no-plist-patch", rootCmd.Flags().Lookup("no-plist-patch"))
}

func runConvert(cmd *cobra.Command, args []string) error {
	tag, err := os.Open(tagPath)
	if err != nil {
		return fmt.Errorf("failed to open tag file: %w", err)
	}
	defer tag.Close()

	db := zealdb.New(dbPath, verbose)
	if err := db.Open(); err != nil {
		return err
	}

	proc, err := tagfile.New(tag, db, doxytag.Options{
		IncludeParentScopes:       includeParentScopes,
		IncludeFunctionSignatures: includeFunctionSignatures,
	}, verbose)
	if err != nil {
		db.Close()
		return err
	}

	// Verbose runs already log per-rule counts; quiet runs get a bar over
	// the rule passes instead.
	if !verbose {
		bar := newRuleBar(len(proc.RuleNames()))
		proc.SetProgress(func(rule string, inserted int) {
			bar.Add(1)
		})
	}

	if err := proc.Process(); err != nil {
		db.Close()
		return err
	}

	// Commit before reporting success; an unwritable database must fail the
	// run with nothing committed.
	if err := db.Close(); err != nil {
		return err
	}

	fmt.Printf("✓ Indexed %d entries into %s\n", proc.EntryCount(), dbPath)

	if !noPlistPatch {
		if err := docset.PatchPlist(dbPath); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				if verbose {
					log.Printf("No Info.plist above %s, skipping docset patch", dbPath)
				}
			} else {
				return err
			}
		} else if verbose {
			log.Printf("Marked %s as a Dash docset", docset.InfoPlistPath(dbPath))
		}
	}

	return nil
}

// newRuleBar builds the progress bar shown while each rule sweeps the
// document.
func newRuleBar(rules int) *progressbar.ProgressBar {
	return progressbar.NewOptions(rules,
		progressbar.OptionSetDescription("Processing tags"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}
