//go:build windows

package tagstore

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
)

// createLink creates linkPath as a directory junction (NTFS reparse point)
// pointing at srcPath. Junctions are used instead of symlinks on Windows to
// avoid requiring the caller to hold SeCreateSymbolicLinkPrivilege.
func createLink(srcPath, linkPath string) error {
	absTarget, err := filepath.Abs(srcPath)
	if err != nil {
		return fmt.Errorf("tagstore: resolving junction target: %w", err)
	}

	if err := os.Mkdir(linkPath, 0o755); err != nil {
		return fmt.Errorf("tagstore: creating junction directory: %w", err)
	}

	handle, err := windows.CreateFile(
		windows.StringToUTF16Ptr(linkPath),
		windows.GENERIC_WRITE,
		0,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_OPEN_REPARSE_POINT|windows.FILE_FLAG_BACKUP_SEMANTICS,
		0,
	)
	if err != nil {
		os.Remove(linkPath)
		return fmt.Errorf("tagstore: opening junction directory handle: %w", err)
	}
	defer windows.CloseHandle(handle)

	buf := buildReparseBuffer(absTarget)
	var bytesReturned uint32
	err = windows.DeviceIoControl(
		handle,
		windows.FSCTL_SET_REPARSE_POINT,
		&buf[0],
		uint32(len(buf)),
		nil,
		0,
		&bytesReturned,
		nil,
	)
	if err != nil {
		os.Remove(linkPath)
		return fmt.Errorf("tagstore: setting reparse point: %w", err)
	}
	return nil
}

// removeLink removes a junction. Junctions are plain directories from the
// filesystem's perspective for removal purposes, so RemoveDirectory suffices
// once the reparse point itself (not its target) is the thing deleted.
func removeLink(linkPath string) error {
	return os.Remove(linkPath)
}

// buildReparseBuffer constructs a REPARSE_DATA_BUFFER for an NTFS mount
// point (junction) targeting absTarget.
func buildReparseBuffer(absTarget string) []byte {
	const reparseTagMountPoint = 0xA0000003

	substituteName := `\??\` + absTarget
	printName := absTarget

	substituteUTF16 := windows.StringToUTF16(substituteName)
	printUTF16 := windows.StringToUTF16(printName)
	// Exclude the implicit NUL terminators from the byte lengths used in
	// the reparse data header; Windows does not want them counted.
	substituteBytes := utf16Bytes(substituteUTF16[:len(substituteUTF16)-1])
	printBytes := utf16Bytes(printUTF16[:len(printUTF16)-1])

	pathBufferLen := len(substituteBytes) + 2 + len(printBytes) + 2
	reparseDataLen := 8 + pathBufferLen
	total := 8 + reparseDataLen

	buf := make([]byte, total)
	binary.LittleEndian.PutUint32(buf[0:4], reparseTagMountPoint)
	binary.LittleEndian.PutUint16(buf[4:6], uint16(reparseDataLen))
	// buf[6:8] reserved, left zero.

	binary.LittleEndian.PutUint16(buf[8:10], 0)                                   // SubstituteNameOffset
	binary.LittleEndian.PutUint16(buf[10:12], uint16(len(substituteBytes)))       // SubstituteNameLength
	binary.LittleEndian.PutUint16(buf[12:14], uint16(len(substituteBytes)+2))     // PrintNameOffset
	binary.LittleEndian.PutUint16(buf[14:16], uint16(len(printBytes)))            // PrintNameLength

	copy(buf[16:], substituteBytes)
	copy(buf[16+len(substituteBytes)+2:], printBytes)

	return buf
}

func utf16Bytes(s []uint16) []byte {
	b := make([]byte, len(s)*2)
	for i, v := range s {
		binary.LittleEndian.PutUint16(b[i*2:], v)
	}
	return b
}
