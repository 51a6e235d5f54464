// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Writing files with their parent directories
//   - Forcing file extensions on user-entered paths
//   - Album cover scaling and JPEG conversion
//
// # File Operations
//
//	path := ioutils.WithExt(userPath, ".txt")
//	err := ioutils.WriteFile(path, []byte("content"))
//
// # Image Processing
//
//	svc := ioutils.NewImageService()
//	jpeg, err := svc.FitJPEG(ctx, coverData, 1000)
package ioutils
