// Command gravelkv reads and writes a single gravelkv file.
//
// Usage:
//
//	gravelkv [flags] FILE get KEY
//	gravelkv [flags] FILE delete KEY
//	gravelkv [flags] FILE insert KEY VALUE
//	gravelkv [flags] FILE update KEY VALUE
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/MikhailWahib/gravelkv"
)

const usage = `Usage:
    gravelkv [flags] FILE get KEY
    gravelkv [flags] FILE delete KEY
    gravelkv [flags] FILE insert KEY VALUE
    gravelkv [flags] FILE update KEY VALUE

Flags:
`

var errUsage = errors.New("usage")

type kvStore interface {
	Load() error
	Get(key []byte) ([]byte, bool, error)
	Insert(key, value []byte) error
	Update(key, value []byte) error
	Delete(key []byte) error
	Close() error
}

var openStore = func(path string, cfg *gravelkv.Config) (kvStore, error) {
	return gravelkv.Open(path, cfg)
}

func main() {
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case errors.Is(err, errUsage):
		os.Exit(2)
	case err != nil:
		fmt.Fprintf(os.Stderr, "gravelkv: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) (err error) {
	fs := flag.NewFlagSet("gravelkv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	recovery := fs.String("recover", gravelkv.RecoverStrict.String(), "recovery policy for damaged files: strict, truncate-tail or skip-corrupt")
	sync := fs.Bool("sync", false, "fsync the file after every write")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	rest := fs.Args()
	if len(rest) < 3 {
		fs.Usage()
		return errUsage
	}
	path, action, key := rest[0], rest[1], rest[2]

	var value string
	switch action {
	case "get", "delete":
		if len(rest) != 3 {
			fs.Usage()
			return errUsage
		}
	case "insert", "update":
		if len(rest) != 4 {
			fs.Usage()
			return errUsage
		}
		value = rest[3]
	default:
		fs.Usage()
		return errUsage
	}

	policy, err := gravelkv.ParseRecoveryPolicy(*recovery)
	if err != nil {
		return err
	}

	cfg := gravelkv.DefaultConfig()
	cfg.Recovery = policy
	cfg.SyncWrites = *sync

	store, err := openStore(path, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); err == nil {
			err = cerr
		}
	}()

	if err := store.Load(); err != nil {
		return err
	}

	switch action {
	case "get":
		v, found, err := store.Get([]byte(key))
		if err != nil {
			return err
		}
		if !found {
			fmt.Fprintf(stderr, "%q not found\n", key)
			return nil
		}
		fmt.Fprintf(stdout, "%q\n", v)
	case "delete":
		return store.Delete([]byte(key))
	case "insert":
		return store.Insert([]byte(key), []byte(value))
	case "update":
		return store.Update([]byte(key), []byte(value))
	}

	return nil
}
