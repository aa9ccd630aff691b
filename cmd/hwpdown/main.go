// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	hwpdown "github.com/nicholasgasior/hwpdown-go"
)

var version = "dev"

func main() {
	var (
		output      string
		showVersion bool
		noMetadata  bool
	)

	flag.StringVar(&output, "o", "", "Output file (default: stdout)")
	flag.StringVar(&output, "output", "", "Output file (default: stdout)")
	flag.BoolVar(&showVersion, "v", false, "Show version")
	flag.BoolVar(&showVersion, "version", false, "Show version")
	flag.BoolVar(&noMetadata, "no-metadata", false, "Skip document metadata extraction")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: hwpdown [flags] [source]\n\n")
		fmt.Fprintf(os.Stderr, "Convert HWP and HWPX documents to Markdown.\n\n")
		fmt.Fprintf(os.Stderr, "Arguments:\n")
		fmt.Fprintf(os.Stderr, "  source    File path to convert (reads stdin if omitted)\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("hwpdown %s\n", version)
		os.Exit(0)
	}

	var opts []hwpdown.Option
	if noMetadata {
		opts = append(opts, hwpdown.WithoutMetadata())
	}

	var result *hwpdown.Result
	var err error

	if args := flag.Args(); len(args) == 0 {
		data, readErr := io.ReadAll(os.Stdin)
		if readErr != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", readErr)
			os.Exit(1)
		}
		result, err = hwpdown.Convert(data, opts...)
	} else {
		result, err = hwpdown.ConvertFile(args[0], opts...)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if output != "" {
		dir := filepath.Dir(output)
		if dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		if writeErr := os.WriteFile(output, []byte(result.Markdown+"\n"), 0o644); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", writeErr)
			os.Exit(1)
		}
	} else {
		fmt.Print(result.Markdown)
		fmt.Println()
	}
}
