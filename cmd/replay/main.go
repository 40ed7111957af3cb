// replay prints the entries of a compressed interaction log, optionally
// filtered to a tick range or entry type. Useful for inspecting what a viewer
// actually did during a session.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"

	"holoroom.app/internal/sim/scene"
)

func main() {
	var (
		dir      = flag.String("dir", "", "interactions dir containing interactions-*.jsonl.zst")
		file     = flag.String("file", "", "single .jsonl.zst file (overrides -dir)")
		fromTick = flag.Uint64("from_tick", 0, "start at tick (inclusive)")
		toTick   = flag.Uint64("to_tick", 0, "stop at tick (inclusive, 0 = no limit)")
		typ      = flag.String("type", "", "only entries of this type (e.g. retarget, event)")
	)
	flag.Parse()

	var files []string
	switch {
	case *file != "":
		files = []string{*file}
	case *dir != "":
		ents, err := os.ReadDir(*dir)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read dir:", err)
			os.Exit(1)
		}
		for _, e := range ents {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".jsonl.zst") {
				files = append(files, filepath.Join(*dir, e.Name()))
			}
		}
		sort.Strings(files)
	default:
		fmt.Fprintln(os.Stderr, "missing -dir or -file")
		os.Exit(2)
	}

	total := 0
	for _, f := range files {
		n, err := dump(f, *fromTick, *toTick, *typ)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", f, err)
			os.Exit(1)
		}
		total += n
	}
	fmt.Fprintf(os.Stderr, "%d entries\n", total)
}

func dump(path string, fromTick, toTick uint64, typ string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return 0, err
	}
	defer dec.Close()

	n := 0
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for sc.Scan() {
		var entry scene.TickLogEntry
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			continue
		}
		if entry.Tick < fromTick {
			continue
		}
		if toTick > 0 && entry.Tick > toTick {
			break
		}
		if typ != "" && entry.Type != typ {
			continue
		}
		fmt.Println(sc.Text())
		n++
	}
	return n, sc.Err()
}
