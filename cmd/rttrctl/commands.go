package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tetratelabs/wazero/api"
	"golang.org/x/term"

	"github.com/wippyai/rttr/binding/wasmhost"
	"github.com/wippyai/rttr/errors"
	"github.com/wippyai/rttr/export"
	"github.com/wippyai/rttr/registry"
	"github.com/wippyai/rttr/signature"
)

type app struct {
	reg        *registry.Registry
	cfg        Config
	configPath string
}

func newRootCmd(reg *registry.Registry) *cobra.Command {
	a := &app{reg: reg, cfg: DefaultConfig()}

	root := &cobra.Command{
		Use:           "rttrctl",
		Short:         "Inspect reflected Go types",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")

	root.AddCommand(
		a.listCmd(),
		a.showCmd(),
		a.decodeCmd(),
		a.witCmd(),
		a.exportsCmd(),
		a.browseCmd(),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	log, err := cfg.Logger()
	if err != nil {
		return err
	}
	registry.SetLogger(log.Named("registry"))
	wasmhost.SetLogger(log.Named("wasmhost"))
	return nil
}

func (a *app) listCmd() *cobra.Command {
	var qualified bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered records and enums",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tNAME\tCTORS\tMETHODS\tFIELDS")
			for _, r := range a.reg.Records() {
				name := r.DisplayName()
				if qualified {
					name = r.QualifiedName()
				}
				fmt.Fprintf(w, "record\t%s\t%d\t%d\t%d\n", name, len(r.Ctors),
					len(r.Methods)+len(r.StaticMethods)+len(r.ExternMethods),
					len(r.Fields)+len(r.StaticFields))
			}
			for _, e := range a.reg.Enums() {
				name := e.DisplayName()
				if qualified {
					name = e.QualifiedName()
				}
				fmt.Fprintf(w, "enum\t%s\t-\t%d\t%d\n", name, len(e.ExternMethods), len(e.Items))
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVarP(&qualified, "qualified", "q", false, "print import-path qualified names")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Describe one record or enum",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if r, ok := a.reg.RecordByName(args[0]); ok {
				showRecord(cmd.OutOrStdout(), r)
				return nil
			}
			if e, ok := a.reg.EnumByName(args[0]); ok {
				showEnum(cmd.OutOrStdout(), e)
				return nil
			}
			return errors.NotFound(errors.PhaseLookup, "type", args[0])
		},
	}
}

func flagSuffix(f export.Flag) string {
	if f == 0 {
		return ""
	}
	return " [" + f.String() + "]"
}

func showRecord(w io.Writer, r *export.RecordData) {
	fmt.Fprintf(w, "record %s (%s)\n", r.DisplayName(), r.QualifiedName())
	fmt.Fprintf(w, "  id:    %s\n", r.ID)
	fmt.Fprintf(w, "  size:  %d, align %d\n", r.Size, r.Align)
	for _, b := range r.Bases {
		fmt.Fprintf(w, "  base:  %s\n", b.GoType)
	}

	if len(r.Ctors) > 0 {
		fmt.Fprintln(w, "  constructors:")
		for _, c := range r.Ctors {
			fmt.Fprintf(w, "    %s%s\n", c.Signature, flagSuffix(c.Flags))
		}
	}
	if r.Dtor != nil {
		fmt.Fprintln(w, "  destructor")
	}
	section := func(title string, fns []*export.FunctionData) {
		if len(fns) == 0 {
			return
		}
		fmt.Fprintf(w, "  %s:\n", title)
		for _, fd := range fns {
			fmt.Fprintf(w, "    %s %s%s\n", fd.Name, fd.Signature, flagSuffix(fd.Flags))
		}
	}
	section("methods", functions(r.Methods, func(m *export.MethodData) *export.FunctionData { return &m.FunctionData }))
	section("static methods", functions(r.StaticMethods, func(m *export.StaticMethodData) *export.FunctionData { return &m.FunctionData }))
	section("extern methods", functions(r.ExternMethods, func(m *export.ExternMethodData) *export.FunctionData { return &m.FunctionData }))

	if len(r.Fields) > 0 {
		fmt.Fprintln(w, "  fields:")
		for _, f := range r.Fields {
			fmt.Fprintf(w, "    %s %s @%d%s\n", f.Name, f.Type, f.Offset, flagSuffix(f.Flags))
		}
	}
	if len(r.StaticFields) > 0 {
		fmt.Fprintln(w, "  static fields:")
		for _, f := range r.StaticFields {
			fmt.Fprintf(w, "    %s %s%s\n", f.Name, f.Type, flagSuffix(f.Flags))
		}
	}
}

func functions[D any](list []*D, fn func(*D) *export.FunctionData) []*export.FunctionData {
	out := make([]*export.FunctionData, len(list))
	for i, d := range list {
		out[i] = fn(d)
	}
	return out
}

func showEnum(w io.Writer, e *export.EnumData) {
	fmt.Fprintf(w, "enum %s (%s)\n", e.DisplayName(), e.QualifiedName())
	fmt.Fprintf(w, "  id:    %s\n", e.ID)
	fmt.Fprintf(w, "  kind:  %s\n", e.Kind)
	fmt.Fprintln(w, "  items:")
	for _, it := range e.Items {
		fmt.Fprintf(w, "    %s = %s\n", it.Name, it.Value)
	}
	for _, m := range e.ExternMethods {
		fmt.Fprintf(w, "  extern %s %s\n", m.Name, m.Signature)
	}
}

func (a *app) decodeCmd() *cobra.Command {
	var normalize bool
	cmd := &cobra.Command{
		Use:   "decode <hex>",
		Short: "Render an encoded type signature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := hex.DecodeString(strings.ReplaceAll(args[0], " ", ""))
			if err != nil {
				return errors.Wrap(errors.PhaseDecode, errors.KindInvalidInput, err, "hex input")
			}
			sig := signature.New(raw)
			if normalize {
				flags, err := a.cfg.CompareFlags()
				if err != nil {
					return err
				}
				sig = sig.Normalized(flags)
				fmt.Fprintf(cmd.OutOrStdout(), "hash: %016x\n", sig.Hash(flags))
			}
			s, err := sig.View().Format()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&normalize, "normalize", "n", false, "apply the configured compare rules first")
	return cmd
}

func (a *app) witCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wit [name...]",
		Short: "Print WIT-like resource declarations",
		RunE: func(cmd *cobra.Command, args []string) error {
			records := a.reg.Records()
			if len(args) > 0 {
				records = records[:0:0]
				for _, name := range args {
					r, ok := a.reg.RecordByName(name)
					if !ok {
						return errors.NotFound(errors.PhaseLookup, "record", name)
					}
					records = append(records, r)
				}
			}
			for i, r := range records {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				fmt.Fprint(cmd.OutOrStdout(), wasmhost.Describe(a.reg, r))
			}
			return nil
		},
	}
}

func (a *app) newHost() (*wasmhost.Host, error) {
	opts := wasmhost.DefaultOptions()
	opts.ModuleName = a.cfg.Module
	return wasmhost.New(a.reg, opts)
}

func (a *app) exportsCmd() *cobra.Command {
	var skipped bool
	cmd := &cobra.Command{
		Use:   "exports",
		Short: "List the WebAssembly host functions derived from the registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := a.newHost()
			if err != nil {
				return err
			}
			defer h.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "module %s\n", h.ModuleName())
			for _, e := range h.Exports() {
				fmt.Fprintf(out, "  %s%s\n", e.Name, coreSignature(e))
			}
			if skipped {
				for _, s := range h.Skipped() {
					fmt.Fprintf(out, "  skipped %s: %v\n", s.Member, s.Err)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipped, "skipped", false, "also list members without a mapping")
	return cmd
}

// coreSignature renders an export as "(self: i32, x: f32) -> f32".
func coreSignature(e wasmhost.Export) string {
	params := make([]string, len(e.Params))
	for i, p := range e.Params {
		name := "p" + fmt.Sprint(i)
		if i < len(e.ParamNames) {
			name = e.ParamNames[i]
		}
		params[i] = name + ": " + api.ValueTypeName(p)
	}
	s := "(" + strings.Join(params, ", ") + ")"
	if len(e.Results) > 0 {
		s += " -> " + api.ValueTypeName(e.Results[0])
	}
	return s
}

func (a *app) browseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Call host functions interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.Unsupported(errors.PhaseConfig, "browse needs an interactive terminal")
			}
			h, err := a.newHost()
			if err != nil {
				return err
			}
			defer h.Close()
			return runBrowser(h)
		},
	}
}
