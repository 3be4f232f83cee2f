/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"pagecomposer/internal/config"
	"pagecomposer/internal/crash"
	"pagecomposer/internal/document"
	"pagecomposer/internal/domain"
	"pagecomposer/internal/export"
	applog "pagecomposer/internal/log"
	"pagecomposer/internal/ui"
	"pagecomposer/internal/vector"
	"pagecomposer/internal/version"
)

func usage() {
	fmt.Println("Page Composer")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pagecomposer version|-v|--version     Show version")
	fmt.Println("  pagecomposer ui                       Launch desktop UI (build with -tags fyne)")
	fmt.Println("  pagecomposer demo <out.pdf|out.png>   Export a generated two-page sample document")
	fmt.Println("  pagecomposer config [init]            Print the effective config, or write the defaults")
}

func main() {
	cfg, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	defer func() { _ = applog.Close() }()
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config not loaded, using defaults", slog.Any("err", cfgErr))
	}

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("Page Composer")
			fmt.Println(version.String())
			return
		case "ui":
			path, _ := config.ConfigPath()
			if err := ui.Run(ui.Options{Config: cfg, ConfigPath: path}); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		case "demo":
			if len(args) < 3 {
				fmt.Println("demo requires <out.pdf|out.png>")
				usage()
				os.Exit(2)
			}
			out, _ := filepath.Abs(args[2])
			doc := ui.NewDocument(cfg)
			defer crash.Recover(doc)
			if err := buildDemo(doc); err != nil {
				l.Error("demo failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			files, err := export.ExportDocument(doc, out, export.Options{
				Scale: cfg.Export.PNGScale,
				PDF:   export.PDFOptions{Title: "Page Composer demo", Author: cfg.Export.Author},
			})
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			for _, f := range files {
				fmt.Println("Wrote", f)
			}
			return
		case "config":
			path, err := config.ConfigPath()
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			if len(args) >= 3 && args[2] == "init" {
				if _, err := os.Stat(path); err == nil {
					fmt.Println("Config already exists at", path)
					os.Exit(1)
				}
				if err := config.SaveFile(path, config.Defaults()); err != nil {
					fmt.Println("Error:", err)
					os.Exit(1)
				}
				fmt.Println("Wrote defaults to", path)
				return
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("# " + path)
			fmt.Print(string(data))
			return
		}
	}

	usage()
}

// buildDemo fills doc with two pages showing every entity kind, including a
// rotated image that crosses the page boundary.
func buildDemo(doc *document.Model) error {
	doc.AddPage(document.WithoutUndo)
	ps := doc.PageSize()

	doc.AddText(48, 48, "Page Composer\nsample document", 28, domain.Black)
	rule := domain.Color{R: 0, G: 120, B: 255, A: 255}
	if _, ok := doc.AddLine(vector.Pt{X: 48, Y: 130}, vector.Pt{X: ps.W - 48, Y: 130}, rule, 2); !ok {
		return fmt.Errorf("demo line rejected")
	}

	if _, err := doc.AddImage(gradient(320, 200), 48, 170, ps.W-96); err != nil {
		return err
	}
	id, err := doc.AddImage(gradient(200, 200), ps.W/2-100, ps.H-120, 200)
	if err != nil {
		return err
	}
	doc.Rotate(domain.ImageHandle(id), 15)
	doc.Select(domain.ImageHandle(id))
	doc.ToggleFrame()
	doc.SetOpacity(0.8)
	doc.ClearSelection()

	doc.AddText(48, ps.H+160, "Second page", 18, domain.Black)
	return nil
}

func gradient(w, h int) *domain.Bitmap {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(255 * x / w), G: uint8(255 * y / h), B: 160, A: 255})
		}
	}
	return domain.NewBitmap(img)
}
