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
	"strconv"

	"github.com/AleutianAI/relaxplan/services/planner/domains"
	"github.com/spf13/cobra"
)

func newDomainsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "domains",
		Short: "List the built-in problems",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			entries := domains.Catalog()
			rows := make([][]string, len(entries))
			for i, e := range entries {
				rows[i] = []string{e.Name, strconv.Itoa(e.DefaultSize), e.Description}
			}
			a.printer.Title("Built-in problems")
			a.printer.Table([]string{"domain", "default size", "description"}, rows)
			return nil
		},
	}
}
