package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/chaoslab/internal/export"
	"github.com/san-kum/chaoslab/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	_, cat, err := openStore()
	if err != nil {
		return err
	}
	defer cat.Close()

	runs, err := cat.List(storage.Query{Kind: listKind, Map: listMap, Limit: listLimit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tMAP\tNAME\tTIME\tROWS\tDIVERGED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
			run.ID,
			run.Kind,
			run.Map,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Rows,
			run.Diverged,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	res, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "run:\t%s\n", meta.ID)
	fmt.Fprintf(w, "time:\t%s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "horizon:\t%d transient, %d measured\n", meta.Transient, meta.Measure)
	fmt.Fprintf(w, "threshold:\t%g\n", meta.Threshold)
	if meta.Mode != "" {
		fmt.Fprintf(w, "mode:\t%s\n", meta.Mode)
	}
	fmt.Fprintf(w, "rows:\t%d (%d diverged)\n", meta.Rows, meta.Diverged)
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()

	render(os.Stdout, res)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	switch exportFormat {
	case "json":
		meta, err := st.Load(runID)
		if err != nil {
			return err
		}
		return withOutput(exportOut, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(meta)
		})

	case "csv":
		f, err := os.Open(filepath.Join(st.Dir(runID), "values.csv"))
		if err != nil {
			return err
		}
		defer f.Close()
		return withOutput(exportOut, func(w io.Writer) error {
			_, err := io.Copy(w, f)
			return err
		})

	case "png":
		if exportOut == "" {
			return fmt.Errorf("png export needs --out")
		}
		res, err := st.LoadResult(runID)
		if err != nil {
			return err
		}
		return writeFigures(res, exportOut, "")

	case "svg":
		res, err := st.LoadResult(runID)
		if err != nil {
			return err
		}
		svg, err := export.ResultToSVG(res)
		if err != nil {
			return err
		}
		return withOutput(exportOut, func(w io.Writer) error {
			_, err := io.WriteString(w, svg)
			return err
		})
	}
	return fmt.Errorf("unknown format %q (want json, csv, png or svg)", exportFormat)
}

// withOutput hands fn stdout, or the named file.
func withOutput(path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := fn(bw); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func deleteRun(cmd *cobra.Command, args []string) error {
	st, cat, err := openStore()
	if err != nil {
		return err
	}
	defer cat.Close()

	if _, err := st.Load(args[0]); err != nil {
		return fmt.Errorf("run %s: %w", args[0], err)
	}
	if err := st.Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}
