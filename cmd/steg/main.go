package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"
)

const version = "0.1.0"

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "steg:", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "steg"
	app.Usage = "Hide payloads in the low bits of images, audio and raw files"
	app.Version = version
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Flags = getFlags()
	app.Commands = []cli.Command{
		encodeCommand(),
		decodeCommand(),
		capacityCommand(),
	}
	return app
}

func getFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:   "config, c",
			Usage:  "load configuration from `FILE`",
			EnvVar: "STEG_CONFIG",
		},
		cli.StringFlag{
			Name:  "level",
			Usage: "logging level [debug|info|warn|error]",
			Value: "warn",
		},
	}
}

// Flags shared by every command.
var (
	inFlag = cli.StringFlag{
		Name:  "in, i",
		Usage: "read the carrier from `FILE` (.png/.bmp/.gif/.jpg, .wav, anything else is raw bytes)",
	}
	keyFlag = cli.StringFlag{
		Name:   "key, k",
		Usage:  "passphrase, optionally with an @<start> suffix (prompted for when omitted)",
		EnvVar: "STEG_PASSPHRASE",
	}
	lsbFlag = cli.IntFlag{
		Name:  "lsb, b",
		Usage: "low-order bits used per cell, 1-8",
		Value: defaultLSB,
	}
	startFlag = cli.StringFlag{
		Name:  "start, s",
		Usage: "start address: byte offset, pixel \"x,y\" or index, or seconds",
	}
	outputFlag = cli.StringFlag{
		Name:  "output, f",
		Usage: "report format [text|json|yaml]",
	}
)

func encodeCommand() cli.Command {
	return cli.Command{
		Name:  "encode",
		Usage: "hide a payload in a carrier",
		Flags: []cli.Flag{
			inFlag,
			cli.StringFlag{Name: "out, o", Usage: "write the stego carrier to `FILE`"},
			cli.StringFlag{Name: "payload, p", Usage: "hide the contents of `FILE`"},
			cli.StringFlag{Name: "message, m", Usage: "hide `TEXT` instead of a file"},
			cli.StringFlag{Name: "name", Usage: "payload name recorded in the frame (defaults to the payload file name)"},
			cli.StringFlag{Name: "type", Usage: "payload type [text|image|pdf|exe|other] (detected when omitted)"},
			keyFlag,
			lsbFlag,
			startFlag,
			cli.StringFlag{Name: "frame-version", Usage: "metadata encoding [json|msgpack|cbor]"},
			cli.StringFlag{Name: "compression", Usage: "payload compression [none|lz4|zstd]"},
			cli.StringFlag{Name: "digest", Usage: "payload digest [none|blake3|sha256]"},
			outputFlag,
		},
		Action: runEncode,
	}
}

func decodeCommand() cli.Command {
	return cli.Command{
		Name:  "decode",
		Usage: "extract a payload from a stego carrier",
		Flags: []cli.Flag{
			inFlag,
			cli.StringFlag{Name: "out, o", Usage: "write the payload to `FILE` (default stdout)"},
			keyFlag,
			lsbFlag,
			startFlag,
			outputFlag,
		},
		Action: runDecode,
	}
}

func capacityCommand() cli.Command {
	return cli.Command{
		Name:  "capacity",
		Usage: "report how much a carrier can hold",
		Flags: []cli.Flag{
			inFlag,
			cli.StringFlag{
				Name:   "key, k",
				Usage:  "also report the largest payload this passphrase can embed",
				EnvVar: "STEG_PASSPHRASE",
			},
			lsbFlag,
			startFlag,
			cli.StringFlag{Name: "type", Usage: "payload type assumed for the maximum payload", Value: "other"},
			outputFlag,
		},
		Action: runCapacity,
	}
}
