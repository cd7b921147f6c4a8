// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/AleutianTriage/pkg/ux"
	"github.com/AleutianAI/AleutianTriage/pkg/validation"
	"github.com/AleutianAI/AleutianTriage/services/triage_engine"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newModelCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Inspect the active triage model",
	}
	cmd.AddCommand(newModelVerifyCmd(a), newModelDumpCmd(a), newModelDescribeCmd(a))
	return cmd
}

// VerifyResult is the JSON form of `model verify`.
type VerifyResult struct {
	Model   string `json:"model"`
	Hash    string `json:"hash"`
	Inputs  int    `json:"inputs"`
	Outputs int    `json:"outputs"`
	Rules   int    `json:"rules"`
}

func newModelVerifyCmd(a *app) *cobra.Command {
	var expect string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Compile the model and print its SHA256",
		Long: `Compile the active model and print its reference and SHA256 hash.

With --expect the command fails unless the hash matches, which pins a
deployment to a reviewed rule table.`,
		Args: inputArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := a.engine.Model()
			result := VerifyResult{
				Model:   a.engine.ModelRef(),
				Hash:    a.engine.Hash(),
				Inputs:  len(m.Inputs),
				Outputs: len(m.Outputs),
				Rules:   len(m.Rules),
			}
			if expect != "" && !strings.EqualFold(strings.TrimPrefix(expect, "sha256:"), strings.TrimPrefix(result.Hash, "sha256:")) {
				return fmt.Errorf("%w: hash %s does not match expected %s", triage_engine.ErrInvalidModel, result.Hash, expect)
			}
			if a.flags.jsonOut {
				return outputJSON(a.stdout, result)
			}
			ux.KeyValue("Model", result.Model)
			ux.KeyValue("Hash", result.Hash)
			ux.KeyValue("Variables", fmt.Sprintf("%d inputs, %d outputs", result.Inputs, result.Outputs))
			ux.Success(fmt.Sprintf("model compiled: %d rules", result.Rules))
			return nil
		},
	}
	cmd.Flags().StringVar(&expect, "expect", "", "fail unless the model hash equals this value")
	return cmd
}

func newModelDumpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the active model YAML",
		Args:  inputArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := a.stdout.Write(a.engine.Source())
			return err
		},
	}
}

func newModelDescribeCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Summarise variables, sets and the expanded rule table",
		Args:  inputArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary := a.engine.Describe()
			if a.flags.jsonOut {
				format = "json"
			}
			switch format {
			case "json":
				return outputJSON(a.stdout, summary)
			case "yaml":
				enc := yaml.NewEncoder(a.stdout)
				enc.SetIndent(2)
				if err := enc.Encode(summary); err != nil {
					return fmt.Errorf("failed to encode YAML: %w", err)
				}
				return enc.Close()
			case "text":
				printSummary(summary)
				return nil
			default:
				return fmt.Errorf("%w: --format must be text, yaml or json, got %q", validation.ErrInvalidInput, format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, yaml or json")
	return cmd
}

func printSummary(s triage_engine.ModelSummary) {
	ux.Title(fmt.Sprintf("%s@%s", s.Name, s.Version))
	if s.Description != "" {
		ux.Muted(strings.TrimSpace(s.Description))
	}
	ux.KeyValue("Hash", s.Hash)

	printVariables := func(title string, vars []triage_engine.VariableSummary) {
		ux.Title(title)
		for _, v := range vars {
			detail := fmt.Sprintf("%s %s", v.Key, v.Domain)
			if v.Unit != "" {
				detail += " " + v.Unit
			}
			if v.Discretization > 0 {
				detail += fmt.Sprintf(" (%d samples)", v.Discretization)
			}
			ux.KeyValue(v.Name, detail)
			for _, set := range v.Sets {
				ux.Info(fmt.Sprintf("  %-18s %-12s %v", set.Name, set.Shape, set.Points))
			}
		}
	}
	printVariables("Inputs", s.Inputs)
	printVariables("Outputs", s.Outputs)

	ux.Title(fmt.Sprintf("Rules (%d)", len(s.Rules)))
	for _, r := range s.Rules {
		ux.Info(fmt.Sprintf("#%d %s", r.Index, r.Rule))
	}
}
