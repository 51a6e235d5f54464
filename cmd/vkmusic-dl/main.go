package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/handiism/vkmusic-downloader/internal/audio"
	"github.com/handiism/vkmusic-downloader/internal/catalog"
	"github.com/handiism/vkmusic-downloader/internal/config"
	"github.com/handiism/vkmusic-downloader/internal/credstore"
	"github.com/handiism/vkmusic-downloader/internal/download"
	vkhttp "github.com/handiism/vkmusic-downloader/internal/http"
	ioutils "github.com/handiism/vkmusic-downloader/internal/io"
	"github.com/handiism/vkmusic-downloader/internal/logging"
	"github.com/handiism/vkmusic-downloader/internal/model"
)

var (
	errorColor   = color.New(color.FgRed).SprintFunc()
	warningColor = color.New(color.FgYellow).SprintFunc()
	successColor = color.New(color.FgGreen).SprintFunc()
	infoColor    = color.New(color.FgCyan).SprintFunc()
)

func main() {
	var (
		configFlag   = pflag.StringP("config", "c", config.DefaultPath(), "Path to config file")
		loginFlag    = pflag.StringP("login", "l", "", "Account login (defaults to the saved one)")
		passwordFlag = pflag.StringP("password", "p", "", "Account password (defaults to the saved one)")
		linkFlag     = pflag.String("link", "", "Profile link, file:// URL or path to a catalog snapshot")
		cookieFlag   = pflag.String("cookie", "", "Path to a cookie file (overrides config)")
		listFlag     = pflag.Bool("list", false, "Print the catalog as a table")
		saveFlag     = pflag.String("save", "", "Save the track list to this file")
		noLinksFlag  = pflag.Bool("no-links", false, "Save the track list without download links")
		exportFlag   = pflag.String("export", "", "Save the catalog as a JSON snapshot")
		downloadFlag = pflag.BoolP("download", "d", false, "Download every track")
		dirFlag      = pflag.StringP("dir", "o", "", "Download directory (overrides config)")
		verboseFlag  = pflag.BoolP("verbose", "v", false, "Show verbose output")
	)

	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "VK Music Downloader - fetch, list and download a profile's tracks")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  vkmusic-dl --link <profile> [--list] [--save FILE] [--download] [options]")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "For interactive mode, use: vkmusic-tui")
		fmt.Fprintln(os.Stderr)
		pflag.PrintDefaults()
	}
	pflag.Parse()

	// Load config
	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *dirFlag != "" {
		settings.DownloadsPath = ioutils.ExpandHome(*dirFlag)
	}
	if *cookieFlag != "" {
		settings.CookiePath = *cookieFlag
	}

	if _, err := logging.Setup("", *verboseFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !*verboseFlag {
		logging.Discard()
	}

	creds, err := credentials(settings, *loginFlag, *passwordFlag, *linkFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !*listFlag && *saveFlag == "" && *exportFlag == "" && !*downloadFlag {
		*listFlag = true
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	fmt.Println("♫ VK Music Downloader")
	fmt.Println(strings.Repeat("━", 40))

	source := catalog.NewAutoSource(vkhttp.NewClient(settings.Timeout()))
	c, err := fetch(ctx, catalog.NewWorker(source), creds, settings.TOTPSecret)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorColor("✗ ")+err.Error())
		os.Exit(1)
	}
	fmt.Println(successColor("✓ ") + c.Header())

	if *listFlag {
		printTable(c)
	}

	if *saveFlag != "" {
		path := ioutils.WithExt(ioutils.ExpandHome(*saveFlag), ".txt")
		if err := ioutils.WriteFile(path, []byte(audio.CreateTrackList(c, !*noLinksFlag))); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving track list: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(successColor("✓ ") + "Track list saved to " + path)
	}

	if *exportFlag != "" {
		data, err := catalog.EncodeCatalog(c)
		if err == nil {
			err = ioutils.WriteFile(ioutils.ExpandHome(*exportFlag), data)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting catalog: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(successColor("✓ ") + "Catalog exported to " + *exportFlag)
	}

	if !*downloadFlag {
		return
	}

	manager := download.NewManager(settings, func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !*verboseFlag {
			return
		}
		fmt.Println(prefix(event.Level) + event.Message)
	})

	fmt.Println()
	message, err := manager.Download(ctx, download.Request{
		Tracks:    c.Tracks,
		Albums:    c.Albums,
		Directory: settings.DownloadsPath,
	})
	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nDownload cancelled.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error during download: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(strings.Repeat("━", 40))
	fmt.Println(successColor("✨ ") + message)
}

// credentials merges the flags over the saved login form.
func credentials(settings *config.Settings, login, password, link string) (catalog.Credentials, error) {
	creds := catalog.Credentials{Login: login, Password: password, ProfileLink: link}

	saved, err := credstore.Load(settings.CredentialsPath)
	if err != nil {
		log.Warn().Err(err).Msg("ignoring saved credentials")
	}
	if saved != nil {
		if creds.Login == "" {
			creds.Login = saved.Login
		}
		if creds.Password == "" {
			creds.Password = saved.Password
		}
		if creds.ProfileLink == "" {
			creds.ProfileLink = saved.ProfileLink
		}
	}

	creds.Cookie, err = credstore.LoadCookie(settings.CookiePath)
	if err != nil {
		return creds, fmt.Errorf("reading cookie: %w", err)
	}
	return creds, creds.Validate()
}

// fetch runs the catalog worker, printing its progress and answering
// two-factor challenges from the TOTP secret or stdin.
func fetch(ctx context.Context, worker *catalog.Worker, creds catalog.Credentials, totpSecret string) (*model.Catalog, error) {
	reader := bufio.NewReader(os.Stdin)
	var auto catalog.Challenger
	if totpSecret != "" {
		auto = catalog.TOTPChallenger(totpSecret)
	}

	for ev := range worker.Start(ctx, creds) {
		switch ev := ev.(type) {
		case catalog.ProgressEvent:
			fmt.Println(infoColor("› ") + ev.Message)
		case *catalog.Challenge:
			if auto != nil {
				ev.Answer(auto(ctx, ev.Message))
				continue
			}
			fmt.Println(warningColor("! ") + ev.Message)
			color.New(color.FgCyan).Print("Code: ")
			input, err := reader.ReadString('\n')
			input = strings.TrimSpace(input)
			ev.Answer(input, err == nil && input != "")
		case catalog.DoneEvent:
			return ev.Catalog, ev.Err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("catalog fetch ended without a result")
}

func printTable(c *model.Catalog) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"", "Artist", "Title", "Album", "Length"})
	table.SetRowLine(false)
	table.SetAutoWrapText(false)
	table.SetHeaderColor(tablewriter.Colors{},
		tablewriter.Colors{tablewriter.FgRedColor, tablewriter.Bold},
		tablewriter.Colors{tablewriter.Bold},
		tablewriter.Colors{tablewriter.Bold},
		tablewriter.Colors{tablewriter.Bold})
	table.SetColumnColor(tablewriter.Colors{tablewriter.FgCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgRedColor},
		tablewriter.Colors{},
		tablewriter.Colors{tablewriter.FgYellowColor},
		tablewriter.Colors{})

	n := 0
	add := func(track *model.Track, album string) {
		n++
		table.Append([]string{fmt.Sprint(n), track.Artist, track.Title, album, length(track.Duration)})
	}
	for _, track := range c.Tracks {
		add(track, "")
	}
	for _, album := range c.Albums {
		for _, track := range album.Tracks {
			add(track, album.Title)
		}
	}
	table.Render()
}

func length(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	s := int(seconds)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

func prefix(level download.ProgressLevel) string {
	switch level {
	case download.LevelError:
		return errorColor("✗ ")
	case download.LevelWarning:
		return warningColor("! ")
	case download.LevelSuccess:
		return successColor("✓ ")
	case download.LevelInfo:
		return infoColor("› ")
	default:
		return "  "
	}
}
