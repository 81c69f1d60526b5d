package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"golang.org/x/term"

	"github.com/zoobzio/steg"
	"github.com/zoobzio/steg/internal/logger"
)

// setup loads the config file, applies command line overrides and returns
// the logger for the command.
func setup(c *cli.Context) (*Config, logger.Logger, error) {
	config, err := NewConfig(c.GlobalString("config"))
	if err != nil {
		return nil, nil, err
	}
	if c.GlobalIsSet("level") || c.GlobalString("config") == "" {
		level, err := logger.GetLogLevel(c.GlobalString("level"))
		if err != nil {
			return nil, nil, err
		}
		config.LogLevel = level
	}
	if c.IsSet("lsb") {
		config.LSB = c.Int("lsb")
	}
	if s := c.String("frame-version"); s != "" {
		v, err := parseVersion(s)
		if err != nil {
			return nil, nil, err
		}
		config.Version = v
	}
	if s := c.String("compression"); s != "" {
		config.Compression = steg.Compression(s)
	}
	if s := c.String("digest"); s != "" {
		config.Digest = steg.DigestAlgo(s)
	}
	if s := c.String("output"); s != "" {
		config.Output = s
	}
	if err := config.validate(); err != nil {
		return nil, nil, err
	}

	log := logger.NewLogger(config.LogLevel)
	log.SetWriter(c.App.ErrWriter)
	return config, log, nil
}

// readPassphrase takes the passphrase from --key or STEG_PASSPHRASE, falling
// back to an interactive prompt without echo.
func readPassphrase(c *cli.Context) (string, error) {
	if key := c.String("key"); key != "" {
		return key, nil
	}
	fd := int(os.Stdin.Fd()) // #nosec G115 -- file descriptors fit in int
	if !term.IsTerminal(fd) {
		return "", errors.New("no passphrase: pass --key or set STEG_PASSPHRASE")
	}
	fmt.Fprint(c.App.ErrWriter, "Passphrase: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(c.App.ErrWriter)
	if err != nil {
		return "", errors.Wrap(err, "failed to read passphrase")
	}
	return string(b), nil
}

// kindFor guesses the carrier kind loadCarrier would produce for path.
func kindFor(path string) steg.Kind {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case imageExts[ext]:
		return steg.KindImage
	case ext == ".wav":
		return steg.KindAudio
	}
	return steg.KindGeneric
}

func requireFlags(c *cli.Context, names ...string) error {
	for _, name := range names {
		if c.String(name) == "" {
			return fmt.Errorf("missing required flag --%s", name)
		}
	}
	return nil
}

func runEncode(c *cli.Context) error {
	config, log, err := setup(c)
	if err != nil {
		return err
	}
	if err := requireFlags(c, "in", "out"); err != nil {
		return err
	}
	in, out := c.String("in"), c.String("out")

	payload := steg.Payload{Name: c.String("name"), Type: steg.PayloadType(c.String("type"))}
	switch {
	case c.IsSet("message"):
		payload.Data = []byte(c.String("message"))
	case c.String("payload") != "":
		path := c.String("payload")
		if payload.Data, err = os.ReadFile(path); err != nil {
			return errors.Wrap(err, "failed to read payload")
		}
		if payload.Name == "" {
			payload.Name = filepath.Base(path)
		}
	default:
		return errors.New("nothing to hide: pass --payload or --message")
	}

	cover, err := loadCarrier(in)
	if err != nil {
		return err
	}
	if kind := kindFor(out); kind != cover.Kind() {
		return fmt.Errorf("cannot write a %s carrier to %s", cover.Kind(), out)
	}
	switch strings.ToLower(filepath.Ext(out)) {
	case ".jpg", ".jpeg", ".gif":
		return fmt.Errorf("%s is a lossy format, write .png or .bmp", out)
	}

	passphrase, err := readPassphrase(c)
	if err != nil {
		return err
	}

	ctx := context.Background()
	eng := config.Engine()
	log.Debugf("Encoding %s into %s carrier %s (%s cells) with key %s",
		humanize.IBytes(uint64(len(payload.Data))), cover.Kind(), in,
		humanize.Comma(int64(cover.Cells())), steg.MaskPassphrase(passphrase))

	res, err := eng.Encode(ctx, cover, payload, passphrase, config.LSB, c.String("start"))
	if err != nil {
		if errors.Is(err, steg.ErrInsufficientCapacity) {
			if n, merr := eng.MaxPayload(ctx, cover, passphrase, config.LSB, c.String("start"), payload.Type, payload.Name); merr == nil {
				log.Warnf("This key fits at most %s uncompressed at lsb %d", humanize.IBytes(uint64(n)), config.LSB)
			}
		}
		return errors.Wrap(err, "encode failed")
	}

	if err := writeCarrier(out, res.Carrier); err != nil {
		return err
	}
	log.Infof("Wrote %s (start %s, step %d)", out, res.StartString(), res.Step)

	view := newEncodeView(out, res)
	if config.Output == "text" {
		view.text(c.App.Writer)
		return nil
	}
	return render(c.App.Writer, config.Output, view)
}

func runDecode(c *cli.Context) error {
	config, log, err := setup(c)
	if err != nil {
		return err
	}
	if err := requireFlags(c, "in"); err != nil {
		return err
	}
	in, out := c.String("in"), c.String("out")

	stego, err := loadCarrier(in)
	if err != nil {
		return err
	}
	passphrase, err := readPassphrase(c)
	if err != nil {
		return err
	}

	log.Debugf("Decoding %s carrier %s with key %s", stego.Kind(), in, steg.MaskPassphrase(passphrase))
	res, err := config.Engine().Decode(context.Background(), stego, passphrase, config.LSB, c.String("start"))
	if err != nil {
		if errors.Is(err, steg.ErrBadKeyOrFormat) {
			log.Warnf("No frame found: check the passphrase, lsb count and start")
		}
		return errors.Wrap(err, "decode failed")
	}

	if err := writeOutput(out, res.Payload, c.App.Writer); err != nil {
		return err
	}

	// Keep stdout clean for the payload.
	var report io.Writer = c.App.Writer
	name := out
	if out == "" || out == "-" {
		report = c.App.ErrWriter
		name = "stdout"
	}
	view := newDecodeView(name, res)
	if config.Output == "text" {
		view.text(report)
		return nil
	}
	return render(report, config.Output, view)
}

func runCapacity(c *cli.Context) error {
	config, _, err := setup(c)
	if err != nil {
		return err
	}
	if err := requireFlags(c, "in"); err != nil {
		return err
	}
	cover, err := loadCarrier(c.String("in"))
	if err != nil {
		return err
	}

	ctx := context.Background()
	eng := config.Engine()
	passphrase := c.String("key")

	var (
		report     steg.CapacityReport
		maxPayload *int
	)
	if passphrase == "" {
		report, err = eng.Capacity(ctx, cover, config.LSB, c.String("start"))
		if err != nil {
			return errors.Wrap(err, "capacity failed")
		}
	} else {
		// With a key the report starts where Encode would.
		report, err = eng.CapacityFor(ctx, cover, passphrase, config.LSB, c.String("start"))
		if err != nil {
			return errors.Wrap(err, "capacity failed")
		}
		n, err := eng.MaxPayload(ctx, cover, passphrase, config.LSB, c.String("start"), steg.PayloadType(c.String("type")), "")
		if err != nil {
			return errors.Wrap(err, "capacity failed")
		}
		maxPayload = &n
	}

	view := newCapacityView(report, maxPayload)
	if config.Output == "text" {
		view.text(c.App.Writer, report)
		return nil
	}
	return render(c.App.Writer, config.Output, view)
}
