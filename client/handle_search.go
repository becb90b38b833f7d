package client

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codetrek/needle/conf"
	"github.com/codetrek/needle/display"
	"github.com/codetrek/needle/searcher"
	"github.com/codetrek/needle/shared/types"
	fsutils "github.com/codetrek/needle/utils/fs"
)

const maxSuggestions = 3

type searchOptions struct {
	regex          bool
	caseSensitive  bool
	directory      string
	recursive      bool
	namePattern    string
	separateTables bool
	jsonOutput     bool
	hidden         bool
	gitIgnore      bool
	exclude        []string
	workers        int
	quiet          bool
}

func (o *searchOptions) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.BoolVarP(&o.regex, "regex", "r", false, "evaluate EXPRESSION as a regular expression")
	flags.BoolVarP(&o.caseSensitive, "case-sensitive", "C", false, "enable case-sensitive matching")
	flags.StringVarP(&o.directory, "directory", "d", ".", "the directory to search in")
	flags.BoolVarP(&o.recursive, "recursive", "R", false, "search subdirectories too")
	flags.StringVarP(&o.namePattern, "filename-pattern", "f", "*", "search only files whose name matches this glob")
	flags.BoolVarP(&o.separateTables, "separate-tables", "s", false, "print one table per file")
	flags.BoolVar(&o.jsonOutput, "json", false, "print the result as an ordered JSON object instead of tables")
	flags.BoolVar(&o.hidden, "hidden", false, "include files and directories whose name starts with a dot")
	flags.BoolVar(&o.gitIgnore, "gitignore", false, "skip files ignored by .gitignore")
	flags.StringArrayVar(&o.exclude, "exclude", nil, "skip paths matching this gitignore-style pattern (repeatable)")
	flags.IntVarP(&o.workers, "workers", "j", 0, "number of files scanned concurrently (default: config, then CPU count)")
	flags.BoolVarP(&o.quiet, "quiet", "q", false, "do not print the summary line")
}

// searchConfig merges flags over the config file. Flags only win when given.
func (o *searchOptions) searchConfig(cmd *cobra.Command, expression string) types.SearchConfig {
	c := conf.Get()
	flags := cmd.Flags()

	config := types.SearchConfig{
		Pattern:        expression,
		IsRegex:        o.regex,
		CaseSensitive:  o.caseSensitive,
		RootDir:        o.directory,
		Recursive:      o.recursive,
		NamePattern:    o.namePattern,
		SeparateTables: c.Output.SeparateTables,
		Hidden:         c.Search.Hidden,
		UseGitIgnore:   c.Search.UseGitIgnore,
		Exclude:        append([]string{}, c.Search.Exclude...),
		Workers:        c.Search.Workers,
	}

	if flags.Changed("separate-tables") {
		config.SeparateTables = o.separateTables
	}
	if flags.Changed("hidden") {
		config.Hidden = o.hidden
	}
	if flags.Changed("gitignore") {
		config.UseGitIgnore = o.gitIgnore
	}
	if flags.Changed("exclude") {
		config.Exclude = append(config.Exclude, o.exclude...)
	}
	if flags.Changed("workers") {
		config.Workers = o.workers
	}

	return config
}

func runSearch(cmd *cobra.Command, expression string, o *searchOptions) error {
	config := o.searchConfig(cmd, expression)

	result, stats, err := searcher.New(config).Search(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if o.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else if err := display.Render(result, config.SeparateTables, display.NewTextTable(out)); err != nil {
		return err
	}

	if o.quiet {
		return nil
	}

	errOut := cmd.ErrOrStderr()
	display.Summary(errOut, stats)
	if stats.FilesScanned == 0 {
		if names := fsutils.SuggestNames(config.RootDir, config.NamePatternOrDefault(), maxSuggestions); len(names) > 0 {
			display.Hint(errOut, "No file matches %q, similar names: %s", config.NamePatternOrDefault(), strings.Join(names, ", "))
		}
	}
	return nil
}
