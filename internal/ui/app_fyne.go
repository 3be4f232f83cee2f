//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"pagecomposer/internal/config"
	"pagecomposer/internal/crash"
	"pagecomposer/internal/document"
	"pagecomposer/internal/domain"
	"pagecomposer/internal/export"
	"pagecomposer/internal/input"
	"pagecomposer/internal/interact"
	applog "pagecomposer/internal/log"
	"pagecomposer/internal/version"
)

const appTitle = "Page Composer"

// Run opens the editor window on a fresh document and blocks until it closes.
func Run(opts Options) error {
	l := applog.WithComponent("ui")
	cfg := opts.Config
	doc := NewDocument(cfg)
	defer crash.Recover(doc)
	l.Info("starting UI", slog.String("session", doc.SessionID().String()))

	fyneApp := app.NewWithID("pagecomposer")
	w := fyneApp.NewWindow(appTitle)
	prefs := fyneApp.Preferences()
	winW := max(prefs.IntWithFallback("window.width", 1000), 640)
	winH := max(prefs.IntWithFallback("window.height", 900), 480)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	dc := NewDocCanvas(doc, cfg.Editor.Controller(), w)
	dc.OnStatus = status.SetText
	doc.Subscribe(document.ObserverFunc(func(ch document.Change) {
		if ch.Has(document.ChangeDirty) {
			w.SetTitle(windowTitle(doc))
		}
	}))

	ed := &editorShell{w: w, dc: dc, doc: doc, cfg: &cfg}
	w.SetMainMenu(ed.menu())
	w.SetOnDropped(dc.dropImages)
	w.SetContent(container.NewBorder(nil, status, nil, nil, dc.Container()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if opts.ConfigPath != "" {
		err := config.Watch(ctx, opts.ConfigPath, func(next config.AppConfig, err error) {
			fyne.Do(func() { ed.reload(next, err) })
		})
		if err != nil {
			l.Warn("config watch disabled", slog.Any("err", err))
		}
	}

	w.SetCloseIntercept(func() {
		quit := func() {
			sz := w.Canvas().Size()
			prefs.SetInt("window.width", int(sz.Width))
			prefs.SetInt("window.height", int(sz.Height))
			w.Close()
		}
		if !doc.Dirty() {
			quit()
			return
		}
		dialog.ShowConfirm("Unsaved changes", "The document has changes that were not exported. Quit anyway?", func(ok bool) {
			if ok {
				quit()
			}
		}, w)
	})

	w.ShowAndRun()
	l.Info("UI closed")
	return nil
}

func windowTitle(doc *document.Model) string {
	if doc.Dirty() {
		return appTitle + " *"
	}
	return appTitle
}

// editorShell owns the menus and dialogs around the canvas.
type editorShell struct {
	w   fyne.Window
	dc  *DocCanvas
	doc *document.Model
	cfg *config.AppConfig
}

func (e *editorShell) reload(next config.AppConfig, err error) {
	if err != nil {
		applog.WithComponent("ui").Warn("config reload failed", slog.Any("err", err))
		e.dc.status("config reload failed")
		return
	}
	*e.cfg = next
	e.dc.Controller().SetConfig(next.Editor.Controller())
	e.dc.status("config reloaded")
}

func (e *editorShell) pdfOptions() export.PDFOptions {
	return export.PDFOptions{Title: appTitle, Author: e.cfg.Export.Author, Creator: "pagecomposer " + version.String()}
}

func (e *editorShell) menu() *fyne.MainMenu {
	key := func(label string, k interact.Key, mods interact.Modifiers) *fyne.MenuItem {
		return fyne.NewMenuItem(label, func() { e.dc.key(k, mods) })
	}

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Export PDF…", func() { e.exportTo(".pdf") }),
		fyne.NewMenuItem("Export PNG…", func() { e.exportTo(".png") }),
		fyne.NewMenuItem("Batch Export for Print…", func() { e.batch(export.PresetPrint) }),
		fyne.NewMenuItem("Batch Export for Web…", func() { e.batch(export.PresetWeb) }),
	)
	editMenu := fyne.NewMenu("Edit",
		key("Undo", interact.KeyZ, interact.ModCtrl),
		key("Redo", interact.KeyZ, interact.ModCtrl|interact.ModShift),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Paste", func() {
			e.dc.commitEdit()
			e.dc.paste()
		}),
		key("Duplicate", interact.KeyD, interact.ModCtrl),
		key("Delete", interact.KeyDelete, 0),
		fyne.NewMenuItemSeparator(),
		key("Bring to Front", interact.KeyRightBracket, 0),
		key("Send to Back", interact.KeyLeftBracket, 0),
		key("Rotate 90°", interact.KeyR, 0),
		key("Grow", interact.KeyEqual, 0),
		key("Shrink", interact.KeyMinus, 0),
		fyne.NewMenuItem("Extend Line Across Page", e.extendLine),
	)
	insertMenu := fyne.NewMenu("Insert",
		key("Text", interact.KeyT, 0),
		key("Line", interact.KeyL, 0),
		fyne.NewMenuItem("Image from File…", e.insertImage),
		fyne.NewMenuItem("Select Tool", func() {
			e.dc.commitEdit()
			e.doc.SetMode(document.ModeSelect)
		}),
	)
	imageMenu := fyne.NewMenu("Image",
		key("Toggle Frame", interact.KeyF, 0),
		fyne.NewMenuItem("Frame Color…", func() {
			e.pickColor("Frame color", func(c domain.Color) { e.doc.SetFrameColor(c) })
		}),
		fyne.NewMenuItem("Frame Width…", e.frameWidth),
		fyne.NewMenuItem("Opacity…", e.opacity),
	)
	a4 := fyne.NewMenuItem("A4", func() { e.pageSize(domain.A4) })
	letter := fyne.NewMenuItem("Letter", func() { e.pageSize(domain.Letter) })
	pageMenu := fyne.NewMenu("Page",
		key("Add Page", interact.KeyReturn, interact.ModCtrl),
		key("Remove Last Page", interact.KeyDelete, interact.ModCtrl|interact.ModShift),
		fyne.NewMenuItemSeparator(),
		a4, letter,
		fyne.NewMenuItem("Background Color…", func() {
			e.pickColor("Page background", func(c domain.Color) { e.doc.ChangeBackgroundColor(c) })
		}),
	)
	viewMenu := fyne.NewMenu("View", key("Toggle Grid", interact.KeyG, 0))
	helpMenu := fyne.NewMenu("Help", fyne.NewMenuItem("About", func() {
		dialog.ShowInformation("About", appTitle+" "+version.String(), e.w)
	}))
	return fyne.NewMainMenu(fileMenu, editMenu, insertMenu, imageMenu, pageMenu, viewMenu, helpMenu)
}

func (e *editorShell) exportDir() fyne.ListableURI {
	if e.cfg.Export.Dir == "" {
		return nil
	}
	lister, err := fstorage.ListerForURI(fstorage.NewFileURI(e.cfg.Export.Dir))
	if err != nil {
		return nil
	}
	return lister
}

func (e *editorShell) exportTo(ext string) {
	e.dc.commitEdit()
	save := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, e.w)
			return
		}
		if uc == nil {
			return
		}
		outPath := uc.URI().Path()
		_ = uc.Close()
		// The dialog leaves an empty file behind; the exporter writes its own.
		_ = os.Remove(outPath)
		if !strings.HasSuffix(strings.ToLower(outPath), ext) {
			outPath += ext
		}
		files, err := export.ExportDocument(e.doc, outPath, export.Options{Scale: e.cfg.Export.PNGScale, PDF: e.pdfOptions()})
		if err != nil {
			dialog.ShowError(err, e.w)
			return
		}
		dialog.ShowInformation("Export", fmt.Sprintf("Exported %d file(s) to %s", len(files), filepath.Dir(outPath)), e.w)
	}, e.w)
	save.SetFileName("document" + ext)
	save.SetFilter(fstorage.NewExtensionFileFilter([]string{ext}))
	if dir := e.exportDir(); dir != nil {
		save.SetLocation(dir)
	}
	save.Show()
}

func (e *editorShell) batch(preset export.PresetName) {
	e.dc.commitEdit()
	open := dialog.NewFolderOpen(func(lu fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, e.w)
			return
		}
		if lu == nil {
			return
		}
		files, err := export.Batch(e.doc, export.BatchOptions{Preset: preset, Dir: lu.Path(), PDF: e.pdfOptions()})
		if err != nil {
			dialog.ShowError(err, e.w)
			return
		}
		dialog.ShowInformation("Batch Export", fmt.Sprintf("Exported %d file(s) to %s", len(files), lu.Path()), e.w)
	}, e.w)
	if dir := e.exportDir(); dir != nil {
		open.SetLocation(dir)
	}
	open.Show()
}

func (e *editorShell) insertImage() {
	e.dc.commitEdit()
	open := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, e.w)
			return
		}
		if rc == nil {
			return
		}
		defer rc.Close()
		bm, err := input.DecodeImage(rc)
		if err != nil {
			dialog.ShowError(fmt.Errorf("decode %s: %w", rc.URI().Name(), err), e.w)
			return
		}
		if _, err := e.dc.Controller().PasteImage(bm); err != nil {
			dialog.ShowError(err, e.w)
		}
	}, e.w)
	open.SetFilter(fstorage.NewExtensionFileFilter(input.Extensions))
	open.Show()
}

func (e *editorShell) extendLine() {
	e.dc.commitEdit()
	if sel := e.doc.Selection(); sel.Kind == domain.KindLine {
		e.doc.ExtendLineToPage(sel.ID)
	}
}

func (e *editorShell) pageSize(ps domain.PageSize) {
	e.dc.commitEdit()
	e.doc.ChangePageSize(ps)
}

func (e *editorShell) pickColor(title string, apply func(domain.Color)) {
	e.dc.commitEdit()
	picker := dialog.NewColorPicker(title, "", func(c color.Color) {
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		apply(domain.Color{R: n.R, G: n.G, B: n.B, A: 255})
	}, e.w)
	picker.Advanced = true
	picker.Show()
}

// selectedImage is the selected image, if any.
func (e *editorShell) selectedImage() (domain.Image, bool) {
	sel := e.doc.Selection()
	if sel.Kind != domain.KindImage {
		return domain.Image{}, false
	}
	return e.doc.Image(sel.ID)
}

func (e *editorShell) opacity() {
	e.dc.commitEdit()
	im, ok := e.selectedImage()
	if !ok {
		dialog.ShowInformation("Opacity", "Select an image first.", e.w)
		return
	}
	slider := widget.NewSlider(domain.MinOpacity, domain.MaxOpacity)
	slider.Step = 0.05
	slider.SetValue(im.Opacity)
	dialog.ShowCustomConfirm("Opacity", "Apply", "Cancel", slider, func(ok bool) {
		if ok {
			e.doc.SetOpacity(slider.Value)
		}
	}, e.w)
}

func (e *editorShell) frameWidth() {
	e.dc.commitEdit()
	im, ok := e.selectedImage()
	if !ok {
		dialog.ShowInformation("Frame Width", "Select an image first.", e.w)
		return
	}
	slider := widget.NewSlider(0, domain.MaxFrameWidth)
	slider.Step = 0.5
	slider.SetValue(im.Frame.Width)
	dialog.ShowCustomConfirm("Frame Width", "Apply", "Cancel", slider, func(ok bool) {
		if ok {
			e.doc.SetFrameWidth(slider.Value)
		}
	}, e.w)
}
