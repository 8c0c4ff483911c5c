package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/livedesk/cookiegrab/config"
	"github.com/livedesk/cookiegrab/cookie"
	"github.com/livedesk/cookiegrab/log"
	"github.com/livedesk/cookiegrab/osext"
	"github.com/livedesk/cookiegrab/storage"
)

var version = "dev"

// app holds what every command needs. It is filled in by Before.
type app struct {
	ctx    context.Context
	out    io.Writer
	errOut io.Writer
	cfg    *config.Config
	logger *log.Logger
	reader *cookie.Reader
}

// runContext tags ctx with an ID for this invocation. Browser processes
// are registered under it so an interrupt only kills what this run started.
func runContext(ctx context.Context) context.Context {
	return osext.WithRunID(ctx, fmt.Sprintf("cookiegrab-%d", os.Getpid()))
}

func newApp(ctx context.Context, out, errOut io.Writer) *cli.App {
	a := &app{ctx: ctx, out: out, errOut: errOut}

	profileFlag := cli.StringFlag{
		Name:  "profile, p",
		Usage: "profile directory to read from, e.g. \"Profile 1\" (default: $COOKIEGRAB_DEFAULT_PROFILE)",
	}

	c := cli.NewApp()
	c.Name = "cookiegrab"
	c.HelpName = "cookiegrab"
	c.Usage = "read Chrome cookies for a domain"
	c.UsageText = "cookiegrab <command> [arguments...]"
	c.Version = version
	c.Writer = out
	c.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "log at debug level",
		},
	}
	c.Before = a.setup
	c.Commands = []cli.Command{
		{
			Name:    "profiles",
			Aliases: []string{"ls"},
			Usage:   "list the Chrome profiles",
			Action:  a.profiles,
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "json", Usage: "print JSON"},
			},
		},
		{
			Name:      "read",
			Aliases:   []string{"r"},
			Usage:     "print the cookies of a domain",
			ArgsUsage: "<domain>",
			Action:    a.read,
			Flags: []cli.Flag{
				profileFlag,
				cli.BoolFlag{Name: "header", Usage: "print a Cookie request header value instead of JSON"},
			},
		},
		{
			Name:      "save",
			Aliases:   []string{"s"},
			Usage:     "save the cookies of a domain to a JSON file",
			ArgsUsage: "<domain>",
			Action:    a.save,
			Flags: []cli.Flag{
				profileFlag,
				cli.StringFlag{Name: "file, f", Usage: "file name (default: <domain>.json)"},
				cli.StringFlag{Name: "dir, d", Usage: "directory (default: $COOKIEGRAB_SAVE_DIR)"},
			},
		},
	}

	return c
}

func (a *app) setup(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	l := logrus.New()
	l.SetOutput(a.errOut)
	l.SetLevel(cfg.Level())

	a.cfg = cfg
	a.logger = log.New(l, false, cfg.CategoryFilter())
	if c.GlobalBool("verbose") {
		if err := a.logger.SetLevel("debug"); err != nil {
			return err
		}
	}
	if a.logger.DebugMode() {
		a.logger.Debugf("setup", "run:%q userDataDir:%q executable:%q profile:%q",
			osext.GetRunID(a.ctx), cfg.UserDataDir, cfg.ExecutablePath, cfg.DefaultProfile)
	}
	a.reader = cookie.NewReader(cfg, a.logger)

	return nil
}

func (a *app) profiles(c *cli.Context) error {
	profiles, err := a.reader.ListProfiles()
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return a.writeJSON(profiles)
	}

	bold := color.New(color.Bold).SprintFunc()
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\n", bold("ID"), bold("NAME"), bold("PATH"))
	for _, p := range profiles {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Name, p.Path)
	}
	return w.Flush()
}

func (a *app) read(c *cli.Context) error {
	cookies, err := a.readCookies(c)
	if err != nil {
		return err
	}
	if c.Bool("header") {
		_, err = fmt.Fprintln(a.out, cookie.Header(cookies))
		return err
	}
	return a.writeJSON(cookies)
}

func (a *app) save(c *cli.Context) error {
	cookies, err := a.readCookies(c)
	if err != nil {
		return err
	}

	dir := c.String("dir")
	if dir == "" {
		dir = a.cfg.SaveDir
	}
	name := c.String("file")
	if name == "" {
		name = cookie.NormalizeDomain(c.Args().First()) + ".json"
	}

	path, err := cookie.Save(a.ctx, storage.NewLocalFilePersister(), dir, name, cookies)
	if err != nil {
		return err
	}
	a.logger.Infof("save", "saved %d cookies to %q", len(cookies), path)
	_, err = fmt.Fprintln(a.out, path)

	return err
}

func (a *app) readCookies(c *cli.Context) ([]cookie.Cookie, error) {
	domain := c.Args().First()
	if domain == "" {
		return nil, errors.New("missing <domain> argument")
	}
	return a.reader.ReadCookies(a.ctx, domain, c.String("profile"))
}

func (a *app) writeJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
