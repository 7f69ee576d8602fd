package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/hokaccha/go-prettyjson"
	"github.com/spf13/viper"

	"github.com/deepnoodle-ai/shade/bytecode"
	"github.com/deepnoodle-ai/shade/dis"
)

func disHandler(v *viper.Viper, args []string, out io.Writer) error {
	data, err := readProgramData(v, args)
	if err != nil {
		return err
	}
	program, err := bytecode.Unmarshal(data)
	if err != nil {
		return err
	}
	if err := program.Validate(); err != nil {
		return err
	}
	if v.GetBool("stats") {
		if v.GetBool("json") {
			return printStatsJSON(program, out)
		}
		printStats(program, out)
		return nil
	}
	reg, err := registry(v)
	if err != nil {
		return err
	}
	d := dis.New(program, reg)

	// If a function name was provided, disassemble its code only
	if name := v.GetString("func"); name != "" {
		fn, _, ok := program.FunctionByName(name)
		if !ok {
			return fmt.Errorf("function %q not found", name)
		}
		instructions, err := d.Function(fn)
		if err != nil {
			return err
		}
		dis.Print(instructions, out)
		return nil
	}

	instructions, err := d.Body()
	if err != nil {
		return err
	}
	if !v.GetBool("all") {
		dis.Print(instructions, out)
		return nil
	}
	heading := color.New(color.Bold)
	heading.Fprintln(out, "<main>")
	dis.Print(instructions, out)
	for _, name := range functionNames(program) {
		fn, _, _ := program.FunctionByName(name)
		instructions, err := d.Function(fn)
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		heading.Fprintf(out, "%s\n", fn)
		dis.Print(instructions, out)
	}
	return nil
}

func functionNames(program *bytecode.Program) []string {
	names := make([]string, 0, len(program.UserFunctionsNameMap))
	for name := range program.UserFunctionsNameMap {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return program.UserFunctionsNameMap[names[i]] < program.UserFunctionsNameMap[names[j]]
	})
	return names
}

func printStats(program *bytecode.Program, out io.Writer) {
	stats := program.Stats()
	fmt.Fprintf(out, "id:           %s\n", program.ID)
	fmt.Fprintf(out, "instructions: %d\n", stats.InstructionCount)
	fmt.Fprintf(out, "functions:    %d\n", stats.FunctionCount)
	fmt.Fprintf(out, "globals:      %d\n", stats.GlobalCount)
	fmt.Fprintf(out, "strings:      %d\n", stats.StringCount)
	fmt.Fprintf(out, "opacity:      %t\n", program.ShaderSupportsOpacity())
}

type statsOutput struct {
	ID           string `json:"id"`
	Instructions int    `json:"instructions"`
	Functions    int    `json:"functions"`
	Globals      int    `json:"globals"`
	Strings      int    `json:"strings"`
	Opacity      bool   `json:"opacity"`
}

func printStatsJSON(program *bytecode.Program, out io.Writer) error {
	stats := program.Stats()
	output, err := getOutputJSON(statsOutput{
		ID:           program.ID.String(),
		Instructions: stats.InstructionCount,
		Functions:    stats.FunctionCount,
		Globals:      stats.GlobalCount,
		Strings:      stats.StringCount,
		Opacity:      program.ShaderSupportsOpacity(),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(output))
	return nil
}

func getOutputJSON(v any) ([]byte, error) {
	if color.NoColor {
		return json.MarshalIndent(v, "", "  ")
	}
	return prettyjson.Marshal(v)
}
