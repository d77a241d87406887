/*
Copyright © 2025 the GridClim authors.
This file is part of GridClim.

GridClim is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GridClim is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GridClim.  If not, see <http://www.gnu.org/licenses/>.
*/

package gridclimutil

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// maybeDownload checks if the input is an existing file locally. If
// not, it checks if the input is an http(s) URL; if it is, it downloads
// the file to downloadDir and returns the path to the downloaded file.
// Downloads are retried with exponential backoff. Files that have
// already been downloaded are reused.
func maybeDownload(path, downloadDir string) (string, error) {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path, nil
	}
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		return path, nil
	}
	u, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("gridclim: parsing input URL %s: %v", path, err)
	}
	if downloadDir == "" {
		downloadDir = os.TempDir()
	}
	dst := filepath.Join(downloadDir, filepath.Base(u.Path))
	if _, err := os.Stat(dst); err == nil {
		logrus.WithField("file", dst).Info("reusing downloaded input")
		return dst, nil
	}
	if err := os.MkdirAll(downloadDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("gridclim: creating download directory: %v", err)
	}

	logrus.WithFields(logrus.Fields{"url": path, "dest": dst}).Info("downloading input")
	op := func() error { return downloadHTTP(path, dst) }
	if err := backoff.Retry(op, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4)); err != nil {
		return "", fmt.Errorf("gridclim: downloading %s: %v", path, err)
	}
	return dst, nil
}

// downloadHTTP fetches the given URL to the given destination path.
func downloadHTTP(url, dst string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %s", resp.Status)
	}
	tmp := dst + ".partial"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}
