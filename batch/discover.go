/*
LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean)

  This file is part of Ocean Uploader. Ocean Uploader is free software: you can
  redistribute it and/or modify it under the terms of the GNU
  General Public License as published by the Free Software
  Foundation, either version 3 of the License, or (at your option)
  any later version.

  Ocean Uploader is distributed in the hope that it will be useful,
  but WITHOUT ANY WARRANTY; without even the implied warranty of
  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
  GNU General Public License for more details.

  You should have received a copy of the GNU General Public License
  in gpl.txt. If not, see <http://www.gnu.org/licenses/>.
*/

package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExt is the extension of files picked up by Discover.
const DefaultExt = ".mp4"

// Item is a video file found in the input directory.
type Item struct {
	Name string // Base name of the file.
	Path string // Path of the file including the input directory.
	Size int64  // Size in bytes.
}

// Discover returns the entries directly inside dir whose extension matches
// ext, ignoring case, in file name order. Symlinks are followed, and
// directories and other non-regular files are left out. Subdirectories are
// not searched.
func Discover(dir, ext string) ([]Item, error) {
	if ext == "" {
		ext = DefaultExt
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("could not read input directory: %w", err)
	}

	var items []Item
	for _, e := range entries {
		if !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		item := Item{Name: e.Name(), Path: filepath.Join(dir, e.Name())}
		// Stat follows symlinks. An entry that cannot be stat'ed, such as a
		// dangling link, is kept so that it fails on its own at upload.
		fi, err := os.Stat(item.Path)
		if err == nil {
			if !fi.Mode().IsRegular() {
				continue
			}
			item.Size = fi.Size()
		}
		items = append(items, item)
	}
	return items, nil
}
