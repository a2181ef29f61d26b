// pkccinfo prints the header of PKCC containers as JSON.
//
// Usage:
//
//	pkccinfo [-codec go-json|json] <filename> [<filename> ...]
//
// Use '-' as filename to read from stdin.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hupe1980/pkcc/codec"
	"github.com/hupe1980/pkcc/format"
	"github.com/hupe1980/pkcc/internal/hash"
)

var codecName string

func init() {
	flag.StringVar(&codecName, "codec", "go-json", "JSON codec ("+strings.Join(codec.Names(), ", ")+")")
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [-codec name] <filename> [<filename> ...]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Print PKCC container headers as JSON.\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

// info is the JSON summary of one container.
type info struct {
	File string `json:"file"`
	*format.Header
	BlocksX       int   `json:"blocks_x"`
	BlocksY       int   `json:"blocks_y"`
	TotalBlocks   int   `json:"total_blocks"`
	PayloadOffset int    `json:"payload_offset"`
	Size          int64  `json:"size"`
	CRC32C        string `json:"crc32c"`
}

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}
	c, ok := codec.ByName(codecName)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown codec %q\n", codecName)
		os.Exit(1)
	}

	failed := false
	for _, name := range args {
		if err := describe(os.Stdout, c, name); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR '%s': %v\n", name, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func describe(w io.Writer, c codec.Codec, name string) error {
	var r io.Reader
	if name == "-" {
		r = bufio.NewReader(os.Stdin)
		name = "<stdin>"
	} else {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	// The digest covers the whole container, header included.
	sum := hash.NewCRC32C()
	tee := io.TeeReader(r, sum)
	h, err := format.ReadHeader(tee)
	if err != nil {
		return err
	}
	rest, err := io.Copy(io.Discard, tee)
	if err != nil {
		return err
	}

	out := summarize(name, h)
	out.Size = format.HeaderSize + rest
	out.CRC32C = fmt.Sprintf("%08x", sum.Sum32())
	data, err := codec.Pretty(c, out)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func summarize(name string, h *format.Header) info {
	return info{
		File:          name,
		Header:        h,
		BlocksX:       h.BlocksX(),
		BlocksY:       h.BlocksY(),
		TotalBlocks:   h.TotalBlocks(),
		PayloadOffset: format.HeaderSize + h.CodebookSize*h.VectorLength() + h.CodebookSize,
	}
}
