package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/storegeo/internal/directory"
	"github.com/sells-group/storegeo/internal/emit"
)

var generateCmd = &cobra.Command{
	Use:   "generate <stores.json> <stores.go>",
	Short: "Emit the resolved directory as a Go source file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if pkg, _ := cmd.Flags().GetString("package"); pkg != "" {
			cfg.Emit.Package = pkg
		}
		if cmd.Flags().Changed("gofmt") {
			cfg.Emit.Gofmt, _ = cmd.Flags().GetBool("gofmt")
		}

		dir, err := directory.Load(args[0])
		if err != nil {
			return err
		}
		return runGenerate(dir, args[1])
	},
}

func init() {
	generateCmd.Flags().String("package", "", "package clause of the generated file (overrides emit.package)")
	generateCmd.Flags().Bool("gofmt", false, "format the output with gofmt (overrides emit.gofmt)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(dir directory.Directory, outPath string) error {
	e, err := emit.New(emitOptions())
	if err != nil {
		return err
	}
	if err := e.EmitFile(outPath, dir); err != nil {
		return err
	}
	zap.L().Info("generated store directory",
		zap.String("command", "generate"),
		zap.String("output", outPath),
		zap.Int("stores", len(dir)),
	)
	return nil
}

func emitOptions() emit.Options {
	return emit.Options{
		Package:    cfg.Emit.Package,
		TypeImport: cfg.Emit.TypeImport,
		TypeName:   cfg.Emit.TypeName,
		VarName:    cfg.Emit.VarName,
		FuncName:   cfg.Emit.FuncName,
		Comment:    cfg.Emit.Comment,
		Gofmt:      cfg.Emit.Gofmt,
	}
}
