// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	softwareDOI      = "10.5281/zenodo.1261812"
	softwareRecordID = "1261812"
)

var reference = "David Völgyes. (2020, February 20). " +
	"Zenodo_get: a downloader for Zenodo records (Version " + version + ").\n" +
	"Zenodo. https://doi.org/" + softwareDOI

var bibtex = `@misc{david_volgyes_2020_` + softwareRecordID + `,
  author  = {David Völgyes},
  title   = {Zenodo_get: a downloader for Zenodo records.},
  month   = {2},
  year    = {2020},
  doi     = {` + softwareDOI + `},
  url     = {https://doi.org/` + softwareDOI + `}
}`

var citeCmd = &cobra.Command{
	Use:   "cite",
	Short: "Print citation information for this software",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Reference for this software:")
		fmt.Println(reference)
		fmt.Println()
		fmt.Println("Bibtex format:")
		fmt.Println(bibtex)
	},
}

func init() {
	rootCmd.AddCommand(citeCmd)
}
