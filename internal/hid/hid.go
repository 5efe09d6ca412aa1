// Package hid parses /proc/bus/input/devices and matches input devices by
// identity, name, or handler.
package hid

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ProcPath is the kernel's input device listing.
const ProcPath = "/proc/bus/input/devices"

// Device is one input device record.
type Device struct {
	Bus      uint16
	Vendor   uint16
	Product  uint16
	Version  uint16
	Name     string
	Phys     string
	Sysfs    string
	Uniq     string
	Handlers []string
}

// EventNode returns the /dev/input/eventN path from the handlers list, or
// "" when the device has no event handler.
func (d *Device) EventNode() string {
	for _, h := range d.Handlers {
		if strings.HasPrefix(h, "event") {
			return "/dev/input/" + h
		}
	}
	return ""
}

// HasHandler reports whether any handler matches the given prefix
// (e.g. "mouse" matches mouse0, mouse1).
func (d *Device) HasHandler(prefix string) bool {
	for _, h := range d.Handlers {
		if strings.HasPrefix(h, prefix) {
			return true
		}
	}
	return false
}

func (d *Device) String() string {
	return fmt.Sprintf("%04x:%04x %s (handlers: %s)",
		d.Vendor, d.Product, d.Name, strings.Join(d.Handlers, " "))
}

// List reads and parses the system device listing.
func List() ([]Device, error) {
	f, err := os.Open(ProcPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", ProcPath, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads /proc/bus/input/devices-format records. Devices are separated
// by blank lines; each line carries a single-letter prefix.
func Parse(r io.Reader) ([]Device, error) {
	var devices []Device
	var cur *Device

	flush := func() {
		if cur != nil {
			devices = append(devices, *cur)
			cur = nil
		}
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			flush()
			continue
		}
		if len(line) < 2 || line[1] != ':' {
			continue
		}
		body := strings.TrimSpace(line[2:])

		switch line[0] {
		case 'I':
			flush()
			cur = &Device{}
			for _, field := range strings.Fields(body) {
				key, val, ok := strings.Cut(field, "=")
				if !ok {
					continue
				}
				n, err := strconv.ParseUint(val, 16, 16)
				if err != nil {
					return nil, fmt.Errorf("bad %s value %q: %w", key, val, err)
				}
				switch key {
				case "Bus":
					cur.Bus = uint16(n)
				case "Vendor":
					cur.Vendor = uint16(n)
				case "Product":
					cur.Product = uint16(n)
				case "Version":
					cur.Version = uint16(n)
				}
			}
		case 'N':
			if cur != nil {
				cur.Name = strings.Trim(strings.TrimPrefix(body, "Name="), `"`)
			}
		case 'P':
			if cur != nil {
				cur.Phys = strings.TrimPrefix(body, "Phys=")
			}
		case 'S':
			if cur != nil {
				cur.Sysfs = strings.TrimPrefix(body, "Sysfs=")
			}
		case 'U':
			if cur != nil {
				cur.Uniq = strings.TrimPrefix(body, "Uniq=")
			}
		case 'H':
			if cur != nil {
				cur.Handlers = strings.Fields(strings.TrimPrefix(body, "Handlers="))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return devices, nil
}

// Filter selects devices. Zero-valued fields are wildcards.
type Filter struct {
	Vendor  uint32 // 0 means any; stored wide so 0x0000 vendors stay expressible via Set flags
	Product uint32
	Name    string // case-insensitive substring
	Handler string // handler prefix, e.g. "mouse", "kbd", "event"

	vendorSet, productSet bool
}

// SetVendor restricts matches to one vendor ID.
func (f *Filter) SetVendor(v uint16) { f.Vendor, f.vendorSet = uint32(v), true }

// SetProduct restricts matches to one product ID.
func (f *Filter) SetProduct(p uint16) { f.Product, f.productSet = uint32(p), true }

// Match reports whether the device satisfies every set criterion.
func (f *Filter) Match(d *Device) bool {
	if f.vendorSet && uint32(d.Vendor) != f.Vendor {
		return false
	}
	if f.productSet && uint32(d.Product) != f.Product {
		return false
	}
	if f.Name != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(f.Name)) {
		return false
	}
	if f.Handler != "" && !d.HasHandler(f.Handler) {
		return false
	}
	return true
}

// Select returns the devices matching the filter, in listing order.
func Select(devices []Device, f *Filter) []Device {
	var out []Device
	for i := range devices {
		if f.Match(&devices[i]) {
			out = append(out, devices[i])
		}
	}
	return out
}
