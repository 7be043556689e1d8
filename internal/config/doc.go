// Package config provides configuration types and loading for the
// negotiation gateway.
//
// Configuration is YAML on disk. The negotiate section's formats mapping
// uses the reserved key "_" for the defaults entry whose attributes are
// inherited by every named format; BuildTable splits it into the explicit
// defaults/named structure the negotiate package works with, so the
// sentinel key never leaks past this package.
package config
