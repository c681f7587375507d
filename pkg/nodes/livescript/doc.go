// Package livescript runs nodes written in Lua.
//
// A script is resolved by file name: any node name ending in ".lua" is
// loaded through a [Loader] and executed in a sandboxed gopher-lua state with
// only the base, table, string and math libraries. The script may define any
// of these globals:
//
//	function setup() end          -- once after construction
//	function loop() end           -- once per frame
//	function addLayout() end      -- in both layout passes
//
// and call into the host:
//
//	size()                   -- virtual size x, y, z
//	lights()                 -- number of virtual lights
//	setRGB(i, r, g, b)       -- color virtual light i
//	setRGBXYZ(x, y, z, r, g, b)
//	fill(r, g, b)
//	hsv(h, s, v)             -- r, g, b for hue 0-360, s and v 0-1
//	control(name, default)   -- numeric control value
//	frame()                  -- frames since setup
//	addLight(x, y, z)        -- addLayout only
//	addPin(pin)              -- addLayout only
//	print(...)               -- to the host logger
//
// Every call into the script runs under a timeout. A script whose loop fails
// is disabled until it is constructed again.
package livescript
