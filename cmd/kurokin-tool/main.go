package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/Sunnie-Evergale/kurokin-tool/pkg/audit"
	"github.com/Sunnie-Evergale/kurokin-tool/pkg/batch"
	"github.com/Sunnie-Evergale/kurokin-tool/pkg/glossary"
	"github.com/Sunnie-Evergale/kurokin-tool/pkg/script"
	"github.com/Sunnie-Evergale/kurokin-tool/pkg/tm"
)

const usage = `usage:
  kurokin-tool extract  [-workers N] <input_dir> <output_dir>
  kurokin-tool audit    <output_dir>
  kurokin-tool compile  [-expand] [-workers N] <original_dir> <translated_dir> <output_dir>
  kurokin-tool glossary <extracted_dir> <report_file>
  kurokin-tool tm build <translated_dir> <db_file>
  kurokin-tool tm apply <extracted_dir> <db_file>`

func main() {
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	// Cancel between files on interrupt; a half-processed batch is fine,
	// half-written files are not (writes are atomic).
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "extract":
		err = runExtract(ctx, os.Args[2:])
	case "audit":
		err = runAudit(os.Args[2:])
	case "compile":
		err = runCompile(ctx, os.Args[2:])
	case "glossary":
		err = runGlossary(os.Args[2:])
	case "tm":
		err = runTM(os.Args[2:])
	default:
		log.Fatalf("unknown command %q\n%s", os.Args[1], usage)
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func runExtract(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	workers := fs.Int("workers", 4, "number of files processed in parallel")
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("expected <input_dir> <output_dir>")
	}
	inDir, outDir := fs.Arg(0), fs.Arg(1)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	names, err := listScripts(inDir)
	if err != nil {
		return err
	}
	fmt.Printf("Extracting %d scripts from %s\n", len(names), inDir)

	results := batch.Run(ctx, names, *workers, func(ctx context.Context, name string) error {
		data, err := os.ReadFile(filepath.Join(inDir, name))
		if err != nil {
			return err
		}
		rec := script.Extract(name, data)
		out, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		return batch.WriteFileAtomic(filepath.Join(outDir, name+".json"), out)
	})
	return summarize("extracted", results)
}

func runCompile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("compile", flag.ExitOnError)
	workers := fs.Int("workers", 4, "number of files processed in parallel")
	expand := fs.Bool("expand", false, "splice in translations longer than the original bytes (may desynchronize engine offset tables)")
	fs.Parse(args)
	if fs.NArg() != 3 {
		return fmt.Errorf("expected <original_dir> <translated_dir> <output_dir>")
	}
	origDir, transDir, outDir := fs.Arg(0), fs.Arg(1), fs.Arg(2)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	mode := script.Strict
	if *expand {
		mode = script.Expand
	}

	names, err := listScripts(origDir)
	if err != nil {
		return err
	}
	fmt.Printf("Compiling %d scripts into %s\n", len(names), outDir)

	results := batch.Run(ctx, names, *workers, func(ctx context.Context, name string) error {
		data, err := os.ReadFile(filepath.Join(origDir, name))
		if err != nil {
			return err
		}
		translated, err := loadRecord(filepath.Join(transDir, name+".json"))
		if err != nil {
			return err
		}

		// The translator-facing JSON carries no offsets; re-extracting
		// the original recovers the byte map the replacements key on.
		src := script.Extract(name, data)
		reps := script.Replacements(src, translated)

		out, issues, err := script.Recompile(data, reps, mode)
		for _, issue := range issues {
			log.Printf("%s: %s", name, issue)
		}
		if err != nil {
			return err
		}
		if len(out) != len(data) {
			log.Printf("%s: grew by %d bytes; engine offset tables may desynchronize", name, len(out)-len(data))
		}
		return batch.WriteFileAtomic(filepath.Join(outDir, name), out)
	})
	return summarize("compiled", results)
}

func runAudit(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected <output_dir>")
	}
	names, err := listJSON(args[0])
	if err != nil {
		return err
	}

	total := 0
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(args[0], name))
		if err != nil {
			return err
		}
		for _, f := range audit.CheckFile(name, data) {
			fmt.Println(f)
			total++
		}
	}
	if total > 0 {
		return fmt.Errorf("%d findings in %d files", total, len(names))
	}
	fmt.Printf("Audited %d files, no findings.\n", len(names))
	return nil
}

func runGlossary(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("expected <extracted_dir> <report_file>")
	}
	records, err := loadRecords(args[0])
	if err != nil {
		return err
	}

	analyzer, err := glossary.NewAnalyzer()
	if err != nil {
		return fmt.Errorf("create analyzer: %w", err)
	}
	report := analyzer.Collect(records)
	out, err := report.Marshal()
	if err != nil {
		return err
	}
	if err := batch.WriteFileAtomic(args[1], out); err != nil {
		return err
	}
	fmt.Printf("Wrote %d terms from %d files to %s\n", len(report.Terms), report.Files, args[1])
	return nil
}

func runTM(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("expected build|apply <dir> <db_file>")
	}
	dir, dbPath := args[1], args[2]

	conn, err := tm.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open translation memory: %w", err)
	}
	defer conn.Close()

	names, err := listJSON(dir)
	if err != nil {
		return err
	}

	switch args[0] {
	case "build":
		stored := 0
		for _, name := range names {
			rec, err := loadRecord(filepath.Join(dir, name))
			if err != nil {
				return err
			}
			n, err := tm.Harvest(conn, rec)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			stored += n
		}
		total, err := tm.CountEntries(conn)
		if err != nil {
			return err
		}
		fmt.Printf("Stored %d translations; memory now holds %d pairs.\n", stored, total)
	case "apply":
		filled := 0
		for _, name := range names {
			path := filepath.Join(dir, name)
			rec, err := loadRecord(path)
			if err != nil {
				return err
			}
			n, err := tm.Apply(conn, rec)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if n == 0 {
				continue
			}
			out, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				return err
			}
			if err := batch.WriteFileAtomic(path, out); err != nil {
				return err
			}
			filled += n
		}
		fmt.Printf("Filled %d translation slots across %d files.\n", filled, len(names))
	default:
		return fmt.Errorf("unknown tm subcommand %q", args[0])
	}
	return nil
}

// listScripts returns every regular file in dir, sorted. The extractor is
// filename-agnostic: naming conventions exist but are not enforced.
func listScripts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func listJSON(dir string) ([]string, error) {
	names, err := listScripts(dir)
	if err != nil {
		return nil, err
	}
	out := names[:0]
	for _, n := range names {
		if strings.HasSuffix(n, ".json") {
			out = append(out, n)
		}
	}
	return out, nil
}

func loadRecord(path string) (*script.FileRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec script.FileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &rec, nil
}

func loadRecords(dir string) ([]*script.FileRecord, error) {
	names, err := listJSON(dir)
	if err != nil {
		return nil, err
	}
	records := make([]*script.FileRecord, 0, len(names))
	for _, name := range names {
		rec, err := loadRecord(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func summarize(verb string, results []batch.Result) error {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			log.Printf("%s: %v", r.Name, r.Err)
		}
	}
	fmt.Printf("Successfully %s %d/%d files.\n", verb, len(results)-failed, len(results))
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}
