//go:build windows

package win32

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procEnumDisplaySettingsW        = user32.NewProc("EnumDisplaySettingsW")
	procChangeDisplaySettingsExW    = user32.NewProc("ChangeDisplaySettingsExW")
	procGetDisplayConfigBufferSizes = user32.NewProc("GetDisplayConfigBufferSizes")
	procQueryDisplayConfig          = user32.NewProc("QueryDisplayConfig")
	procDisplayConfigGetDeviceInfo  = user32.NewProc("DisplayConfigGetDeviceInfo")
)

const (
	enumCurrentSettings = 0xFFFFFFFF

	dmDisplayOrientation = 0x00000080
	dmBitsPerPel         = 0x00040000
	dmPelsWidth          = 0x00080000
	dmPelsHeight         = 0x00100000
	dmDisplayFrequency   = 0x00400000

	cdsUpdateRegistry = 0x00000001
	cdsTest           = 0x00000002

	qdcOnlyActivePaths = 0x00000002

	deviceInfoGetSourceName = 1
	deviceInfoGetTargetName = 2
)

// devMode mirrors DEVMODEW with the display union member.
type devMode struct {
	DeviceName         [32]uint16
	SpecVersion        uint16
	DriverVersion      uint16
	Size               uint16
	DriverExtra        uint16
	Fields             uint32
	PositionX          int32
	PositionY          int32
	DisplayOrientation uint32
	DisplayFixedOutput uint32
	Color              int16
	Duplex             int16
	YResolution        int16
	TTOption           int16
	Collate            int16
	FormName           [32]uint16
	LogPixels          uint16
	BitsPerPel         uint32
	PelsWidth          uint32
	PelsHeight         uint32
	DisplayFlags       uint32
	DisplayFrequency   uint32
	ICMMethod          uint32
	ICMIntent          uint32
	MediaType          uint32
	DitherType         uint32
	Reserved1          uint32
	Reserved2          uint32
	PanningWidth       uint32
	PanningHeight      uint32
}

func newDevMode() *devMode {
	dm := &devMode{}
	dm.Size = uint16(unsafe.Sizeof(*dm))
	return dm
}

type luid struct {
	LowPart  uint32
	HighPart int32
}

func (l luid) uint64() uint64 {
	return uint64(uint32(l.HighPart))<<32 | uint64(l.LowPart)
}

type rational struct {
	Numerator   uint32
	Denominator uint32
}

type pathSourceInfo struct {
	AdapterID   luid
	ID          uint32
	ModeInfoIdx uint32
	StatusFlags uint32
}

type pathTargetInfo struct {
	AdapterID        luid
	ID               uint32
	ModeInfoIdx      uint32
	OutputTechnology uint32
	Rotation         uint32
	Scaling          uint32
	RefreshRate      rational
	ScanLineOrdering uint32
	TargetAvailable  int32
	StatusFlags      uint32
}

// pathInfo mirrors DISPLAYCONFIG_PATH_INFO.
type pathInfo struct {
	SourceInfo pathSourceInfo
	TargetInfo pathTargetInfo
	Flags      uint32
}

// modeInfo mirrors DISPLAYCONFIG_MODE_INFO; the union is kept opaque.
type modeInfo struct {
	InfoType  uint32
	ID        uint32
	AdapterID luid
	Union     [48]byte
}

type deviceInfoHeader struct {
	Type      uint32
	Size      uint32
	AdapterID luid
	ID        uint32
}

type sourceDeviceName struct {
	Header            deviceInfoHeader
	ViewGdiDeviceName [32]uint16
}

type targetDeviceName struct {
	Header                    deviceInfoHeader
	Flags                     uint32
	OutputTechnology          uint32
	EdidManufactureID         uint16
	EdidProductCodeID         uint16
	ConnectorInstance         uint32
	MonitorFriendlyDeviceName [64]uint16
	MonitorDevicePath         [128]uint16
}

func enumDisplaySettings(device string, mode uint32, dm *devMode) bool {
	name, err := windows.UTF16PtrFromString(device)
	if err != nil {
		return false
	}
	r, _, _ := procEnumDisplaySettingsW.Call(uintptr(unsafe.Pointer(name)), uintptr(mode), uintptr(unsafe.Pointer(dm)))
	return r != 0
}

func changeDisplaySettingsEx(device string, dm *devMode, flags uint32) int32 {
	name, err := windows.UTF16PtrFromString(device)
	if err != nil {
		return -5 // DISP_CHANGE_BADPARAM
	}
	r, _, _ := procChangeDisplaySettingsExW.Call(uintptr(unsafe.Pointer(name)), uintptr(unsafe.Pointer(dm)), 0, uintptr(flags), 0)
	return int32(r)
}

func queryActivePaths() ([]pathInfo, error) {
	for {
		var nPaths, nModes uint32
		r, _, _ := procGetDisplayConfigBufferSizes.Call(qdcOnlyActivePaths, uintptr(unsafe.Pointer(&nPaths)), uintptr(unsafe.Pointer(&nModes)))
		if r != 0 {
			return nil, windows.Errno(r)
		}
		if nPaths == 0 {
			return nil, nil
		}
		paths, modes := configBuffers(nPaths, nModes)
		r, _, _ = procQueryDisplayConfig.Call(qdcOnlyActivePaths,
			uintptr(unsafe.Pointer(&nPaths)), uintptr(unsafe.Pointer(&paths[0])),
			uintptr(unsafe.Pointer(&nModes)), uintptr(unsafe.Pointer(&modes[0])), 0)
		switch windows.Errno(r) {
		case 0:
			return paths[:nPaths], nil
		case windows.ERROR_INSUFFICIENT_BUFFER:
			// topology changed between the two calls
			continue
		default:
			return nil, windows.Errno(r)
		}
	}
}

// configBuffers sizes the QueryDisplayConfig buffers. Both hold at least one
// element so the first element can be passed even when a count is zero.
func configBuffers(nPaths, nModes uint32) ([]pathInfo, []modeInfo) {
	return make([]pathInfo, max(nPaths, 1)), make([]modeInfo, max(nModes, 1))
}

func sourceName(p pathInfo) (string, error) {
	var req sourceDeviceName
	req.Header = deviceInfoHeader{
		Type:      deviceInfoGetSourceName,
		Size:      uint32(unsafe.Sizeof(req)),
		AdapterID: p.SourceInfo.AdapterID,
		ID:        p.SourceInfo.ID,
	}
	if r, _, _ := procDisplayConfigGetDeviceInfo.Call(uintptr(unsafe.Pointer(&req))); r != 0 {
		return "", windows.Errno(r)
	}
	return windows.UTF16ToString(req.ViewGdiDeviceName[:]), nil
}

func targetName(p pathInfo) (string, error) {
	var req targetDeviceName
	req.Header = deviceInfoHeader{
		Type:      deviceInfoGetTargetName,
		Size:      uint32(unsafe.Sizeof(req)),
		AdapterID: p.TargetInfo.AdapterID,
		ID:        p.TargetInfo.ID,
	}
	if r, _, _ := procDisplayConfigGetDeviceInfo.Call(uintptr(unsafe.Pointer(&req))); r != 0 {
		return "", windows.Errno(r)
	}
	return windows.UTF16ToString(req.MonitorFriendlyDeviceName[:]), nil
}
