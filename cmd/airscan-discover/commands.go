package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yetamrra/sane-airscan-wsd/internal/config"
	"github.com/yetamrra/sane-airscan-wsd/internal/devcaps"
	"github.com/yetamrra/sane-airscan-wsd/internal/device"
	"github.com/yetamrra/sane-airscan-wsd/internal/discovery"
	"github.com/yetamrra/sane-airscan-wsd/internal/logging"
	"github.com/yetamrra/sane-airscan-wsd/internal/tui"
	"github.com/yetamrra/sane-airscan-wsd/internal/urls"
)

// Command flags
var (
	configPath   string
	outputFormat string
	logLevel     string
	listTimeout  int
)

func init() {
	// Common flags for all commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "text", "Output format (text, json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error; default silent)")
	rootCmd.PersistentFlags().IntVar(&listTimeout, "timeout", 0, "Device listing timeout in seconds (default: from config)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(watchCmd)
}

// setup loads the config, initializes logging, and builds a manager with
// static devices registered and mDNS discovery running (when enabled).
// The returned cleanup stops discovery and purges the device table.
func setup() (*device.Manager, func(), error) {
	if err := logging.Initialize(logLevel); err != nil {
		return nil, nil, err
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	mgr := device.NewManager(nil)
	if listTimeout > 0 {
		mgr.SetListTimeout(time.Duration(listTimeout) * time.Second)
	} else {
		mgr.SetListTimeout(cfg.ListTimeout())
	}

	for name, baseURL := range cfg.Devices {
		if err := mgr.AddStatic(name, baseURL); err != nil {
			mgr.Stop()
			return nil, nil, err
		}
	}

	var browser *discovery.Browser
	if cfg.Discovery.Enabled {
		browser = discovery.NewBrowser(mgr)
		browser.InitScanWindow = cfg.InitScanWindow()
		if err := browser.Start(context.Background()); err != nil {
			mgr.Stop()
			return nil, nil, err
		}
	}

	cleanup := func() {
		if browser != nil {
			browser.Stop()
		}
		mgr.Stop()
		logging.Sync()
	}
	return mgr, cleanup, nil
}

// listCmd discovers devices on the network and prints the device table
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List eSCL scanners on the network",
	Long: `Discover eSCL scanners via mDNS/DNS-SD and list the device table.

The command waits for the initial discovery sweep to settle (bounded by
the listing timeout), then prints every device whose capabilities were
successfully negotiated. Statically configured devices are included.`,
	Example: `  # List devices with the default timeout
  airscan-discover list

  # Allow slow devices more time to respond
  airscan-discover list --timeout 15

  # JSON output for scripting
  airscan-discover list --format json`,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	mgr, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	infos := mgr.List()

	if outputFormat == "json" {
		data, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(infos) == 0 {
		fmt.Println("No devices found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the scanner is powered on and on the same network")
		fmt.Println("  - Check that the scanner advertises eSCL (AirScan/AirPrint)")
		fmt.Println("  - Try increasing --timeout for slower networks")
		fmt.Println("  - Add a static device entry to the config file if mDNS is blocked")
		fmt.Printf("\nProtocol references:\n")
		fmt.Printf("  - eSCL specification:    %s\n", urls.ESCLSpec)
		fmt.Printf("  - Bonjour printing spec: %s\n", urls.BonjourPrinting)
		fmt.Printf("  - SANE project:          %s\n", urls.SANEProject)
		fmt.Printf("  - IPv6 zone literals:    %s\n", urls.RFC6874)
		return nil
	}

	fmt.Printf("Found %d device(s):\n\n", len(infos))
	for i, info := range infos {
		fmt.Printf("%d. %s\n", i+1, info.Name)
		fmt.Printf("   Vendor: %s\n", info.Vendor)
		fmt.Printf("   Model:  %s\n", info.Model)
		fmt.Printf("   Type:   %s\n", info.Type)
		fmt.Println()
	}

	fmt.Println("Use 'airscan-discover show <name>' to inspect a device")
	fmt.Println("Use 'airscan-discover watch' for a live view")
	return nil
}

// showCmd displays the negotiated capabilities of one device
var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a device's negotiated capabilities",
	Long: `Display the negotiated capabilities and current option selection
of a single device.

The device is located by the name it was discovered (or configured)
under; run 'airscan-discover list' first to see the available names.`,
	Example: `  # Inspect a discovered scanner
  airscan-discover show "Kyocera ECOSYS M2040dn"

  # JSON output for scripting
  airscan-discover show "Kyocera ECOSYS M2040dn" --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

// shownSource is the JSON shape of one scan source in show output
type shownSource struct {
	Name            string   `json:"name"`
	ColorModes      []string `json:"color_modes"`
	Resolutions     []int    `json:"resolutions,omitempty"`
	ResolutionRange *[2]int  `json:"resolution_range,omitempty"`
	WidthMM         float64  `json:"width_mm"`
	HeightMM        float64  `json:"height_mm"`
}

// shownDevice is the JSON shape of show output
type shownDevice struct {
	device.Info
	Sources []shownSource  `json:"sources"`
	Options map[string]any `json:"options"`
}

func runShow(cmd *cobra.Command, args []string) error {
	name := args[0]

	mgr, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	// Let the initial sweep settle before looking the name up
	mgr.List()

	dev := mgr.Open(name)
	if dev == nil {
		return fmt.Errorf("device %q not found or not ready (run 'airscan-discover list' to see available devices)", name)
	}
	defer mgr.Close(dev)

	caps := dev.Caps()

	info := device.Info{
		Name:   dev.Name(),
		Vendor: caps.Vendor,
		Model:  caps.Model,
		Type:   device.DeviceType,
	}

	sources := collectSources(caps)
	options := collectOptions(dev)

	if outputFormat == "json" {
		data, err := json.MarshalIndent(shownDevice{
			Info:    info,
			Sources: sources,
			Options: options,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	width := tui.GetTerminalWidth()
	fmt.Println(tui.RenderDivider(width))
	fmt.Printf("%s\n", info.Name)
	fmt.Printf("  Vendor: %s\n", info.Vendor)
	fmt.Printf("  Model:  %s\n", info.Model)
	fmt.Printf("  Type:   %s\n", info.Type)
	fmt.Println(tui.RenderDivider(width))

	fmt.Println("\nScan sources:")
	for _, src := range sources {
		fmt.Printf("  %s\n", src.Name)
		fmt.Printf("    Color modes: %v\n", src.ColorModes)
		if src.Resolutions != nil {
			fmt.Printf("    Resolutions: %v DPI\n", src.Resolutions)
		} else if src.ResolutionRange != nil {
			fmt.Printf("    Resolutions: %d-%d DPI\n", src.ResolutionRange[0], src.ResolutionRange[1])
		}
		fmt.Printf("    Scan area:   %.1f x %.1f mm\n", src.WidthMM, src.HeightMM)
	}

	fmt.Println("\nCurrent option selection:")
	for opt := device.Option(0); int(opt) < device.NumOptions; opt++ {
		if value, ok := options[opt.String()]; ok {
			fmt.Printf("  %-12s %v\n", opt.String()+":", value)
		}
	}
	return nil
}

// collectSources flattens the capability document's sources for display
func collectSources(caps *devcaps.Caps) []shownSource {
	var sources []shownSource
	for id := devcaps.SourcePlaten; int(id) < devcaps.NumSourceIDs; id++ {
		src := caps.Source(id)
		if src == nil {
			continue
		}

		modes := make([]string, 0, len(src.ColorModes))
		for _, cm := range src.ColorModes {
			modes = append(modes, cm.String())
		}

		shown := shownSource{
			Name:       id.String(),
			ColorModes: modes,
			WidthMM:    src.BRX.Max,
			HeightMM:   src.BRY.Max,
		}
		if src.Resolutions != nil {
			shown.Resolutions = append([]int(nil), src.Resolutions...)
		} else if src.ResolutionRange != nil {
			shown.ResolutionRange = &[2]int{src.ResolutionRange.Min, src.ResolutionRange.Max}
		}
		sources = append(sources, shown)
	}
	return sources
}

// collectOptions snapshots every option's current value, keyed by option name
func collectOptions(dev *device.Device) map[string]any {
	options := make(map[string]any)
	for opt := device.Option(0); int(opt) < device.NumOptions; opt++ {
		value, err := dev.GetOption(opt)
		if err != nil {
			continue
		}
		options[opt.String()] = value
	}
	return options
}

// watchCmd launches the live TUI view of the device table
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the device table live",
	Long: `Launch a live terminal view of the device table.

Devices appear as they are discovered and negotiated, and disappear
when they leave the network. Press 'r' to force a refresh, 'q' to quit.`,
	Example: `  # Watch for scanners appearing on the network
  airscan-discover watch`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	mgr, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	return tui.Run(mgr)
}
