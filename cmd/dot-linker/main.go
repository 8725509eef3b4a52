// Package main provides the dot-linker CLI.
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/Frankenween/dot-linker/internal/config"
	"github.com/Frankenween/dot-linker/internal/dotio"
	"github.com/Frankenween/dot-linker/internal/graph"
	"github.com/Frankenween/dot-linker/internal/linker"
	"github.com/Frankenween/dot-linker/internal/store"
)

// Version is the current dot-linker version
var Version = "0.3.1"

var rootCmd = &cobra.Command{
	Use:     "dot-linker",
	Short:   "Link and transform call graphs stored as DOT files",
	Long:    `dot-linker reads call graphs from Graphviz DOT files, optionally links them into one graph by unifying functions with equal names, runs a configurable pass pipeline over them and writes the results back as DOT.`,
	Version: Version,
}

var runCmd = &cobra.Command{
	Use:   "run [inputs...]",
	Short: "Load graphs, link and transform them, write DOT output",
	Long: `Load call graphs from DOT files, optionally link them into a single
graph and run a pass pipeline over the result.

Inputs are file paths or doublestar globs ('**' is supported); pass a
single '-' to read a newline-separated path list from stdin instead.
Files ending in .zst are decompressed transparently, and an --out path
ending in .zst is compressed.

Examples:
  dot-linker run vmlinux.dot --passes pipeline.cfg --out out.dot
  dot-linker run 'obj/**/*.dot' --link --out linked.dot.zst
  find build -name '*.dot' | dot-linker run - --link --out linked.dot

Without --out the resulting graphs are written to stdout. Several
unlinked graphs need a directory --out; each is written there under its
input's name.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

var exportCmd = &cobra.Command{
	Use:   "export [inputs...]",
	Short: "Persist graphs into a SQLite node/edge database",
	Long: `Load call graphs, optionally link and transform them, and store every
node and edge in a SQLite database. Node ids are content addressed, so
repeated exports and graphs sharing functions deduplicate cleanly.

Examples:
  dot-linker export 'obj/**/*.dot' --link --db calls.db
  dot-linker export linked.dot --passes pipeline.cfg --db calls.db`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

var infoCmd = &cobra.Command{
	Use:   "info [inputs...]",
	Short: "Print node and edge counts per input graph",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInfo,
}

var passesCmd = &cobra.Command{
	Use:   "passes",
	Short: "List the available pipeline passes",
	RunE:  runPasses,
}

var (
	linkFlag    bool
	passesFile  string
	outPath     string
	dbPath      string
	examplePath string
)

func init() {
	runCmd.Flags().BoolVar(&linkFlag, "link", false, "Link all input graphs into a single graph before running passes")
	runCmd.Flags().StringVar(&passesFile, "passes", "", "Pass pipeline description (line format, or .yaml/.yml)")
	runCmd.Flags().StringVar(&outPath, "out", "", "Output file, or directory when writing several graphs (default: stdout)")

	exportCmd.Flags().BoolVar(&linkFlag, "link", false, "Link all input graphs into a single graph before exporting")
	exportCmd.Flags().StringVar(&passesFile, "passes", "", "Pass pipeline description to run before exporting")
	exportCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (required)")
	exportCmd.MarkFlagRequired("db")

	infoCmd.Flags().BoolVar(&linkFlag, "link", false, "Also print the counts of the linked graph")

	passesCmd.Flags().StringVar(&examplePath, "example", "", "Write a commented sample pipeline to this path")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(passesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// collectInputs resolves the positional arguments to concrete file
// paths. A single "-" reads the list from stdin; everything else is
// expanded as a doublestar glob, with literal paths passing through.
func collectInputs(args []string) ([]string, error) {
	if len(args) == 1 && args[0] == "-" {
		var paths []string
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line != "" {
				paths = append(paths, line)
			}
		}
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("reading path list from stdin: %w", err)
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("no input paths on stdin")
		}
		return paths, nil
	}

	var paths []string
	for _, arg := range args {
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad glob %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", arg)
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}

// loadGraphs parses every input file into a call graph.
func loadGraphs(paths []string) ([]*graph.Graph[string], error) {
	graphs := make([]*graph.Graph[string], 0, len(paths))
	for _, path := range paths {
		g, err := dotio.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		graphs = append(graphs, g)
	}
	return graphs, nil
}

// linkGraphs merges all graphs into one by unifying functions with equal
// names.
func linkGraphs(graphs []*graph.Graph[string]) *graph.Graph[string] {
	files := make([]*linker.ObjectFile, len(graphs))
	for i, g := range graphs {
		files[i] = linker.FromGraph(g)
	}
	return linker.ToGraph(linker.LinkAll(files))
}

// prepareGraphs runs the shared load / link / transform front half of
// run and export. The returned names parallel the graphs and are used
// for output file naming; after linking there is a single graph named
// "linked".
func prepareGraphs(args []string) ([]*graph.Graph[string], []string, error) {
	paths, err := collectInputs(args)
	if err != nil {
		return nil, nil, err
	}
	graphs, err := loadGraphs(paths)
	if err != nil {
		return nil, nil, err
	}

	names := make([]string, len(paths))
	for i, path := range paths {
		names[i] = graphName(path)
	}
	if linkFlag {
		graphs = []*graph.Graph[string]{linkGraphs(graphs)}
		names = []string{"linked"}
	}

	if passesFile != "" {
		pipeline, err := config.Load(passesFile)
		if err != nil {
			return nil, nil, err
		}
		pipeline.Run(graphs)
	}
	return graphs, names, nil
}

// graphName derives a graph name from an input path: the base name with
// the .zst and .dot extensions stripped.
func graphName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".zst")
	name = strings.TrimSuffix(name, ".dot")
	return name
}

func runRun(cmd *cobra.Command, args []string) error {
	graphs, names, err := prepareGraphs(args)
	if err != nil {
		return err
	}

	if outPath == "" {
		for i, g := range graphs {
			if err := dotio.Write(os.Stdout, g, names[i]); err != nil {
				return fmt.Errorf("writing %s: %w", names[i], err)
			}
		}
		return nil
	}

	if len(graphs) == 1 {
		if err := dotio.WriteFile(outPath, graphs[0], names[0]); err != nil {
			return fmt.Errorf("writing %s: %w", outPath, err)
		}
		return nil
	}

	// Several graphs go into a directory, one file per input. A failed
	// write does not abort the remaining ones.
	if info, err := os.Stat(outPath); err != nil || !info.IsDir() {
		return fmt.Errorf("--out %q must be an existing directory when writing %d graphs", outPath, len(graphs))
	}
	// Output names keep only the base of the input path, so inputs from
	// different directories can collide. Refuse to silently overwrite.
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return fmt.Errorf("two inputs derive the same output name %q; rename them or use --link", name)
		}
		seen[name] = true
	}
	failed := 0
	for i, g := range graphs {
		target := filepath.Join(outPath, names[i]+".dot")
		if err := dotio.WriteFile(target, g, names[i]); err != nil {
			fmt.Fprintf(os.Stderr, "writing %s: %v\n", target, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d graphs not written", failed, len(graphs))
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	graphs, _, err := prepareGraphs(args)
	if err != nil {
		return err
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	for i, g := range graphs {
		if err := db.InsertGraph(g); err != nil {
			return fmt.Errorf("exporting graph %d: %w", i, err)
		}
	}
	nodes, err := db.CountNodes()
	if err != nil {
		return err
	}
	edges, err := db.CountEdges()
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d nodes, %d edges\n", dbPath, nodes, edges)
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	paths, err := collectInputs(args)
	if err != nil {
		return err
	}
	graphs, err := loadGraphs(paths)
	if err != nil {
		return err
	}
	for i, g := range graphs {
		fmt.Printf("%s: %d nodes, %d edges\n", paths[i], g.Len(), g.NumEdges())
	}
	if linkFlag && len(graphs) > 0 {
		linked := linkGraphs(graphs)
		fmt.Printf("linked: %d nodes, %d edges\n", linked.Len(), linked.NumEdges())
	}
	return nil
}

func runPasses(cmd *cobra.Command, args []string) error {
	fmt.Println("Available passes:", config.Names())
	if examplePath != "" {
		if err := config.WriteExample(examplePath); err != nil {
			return err
		}
		fmt.Println("Sample pipeline written to", examplePath)
	}
	return nil
}
