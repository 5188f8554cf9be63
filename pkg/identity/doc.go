// Copyright (c) 2024 The open-itk Authors
// SPDX-License-Identifier: BSD-2-Clause

/*
Package identity implements the stateless field validators used by the
SMSP business operations.

The validators cover the NHS Number Mod-11 checksum, multi-granularity
dates of birth, person names and postcodes with wildcard rules, and gender
codes against a configured code set. Each validator returns a typed
validation failure carrying a fixed human-readable prefix plus the
offending value; values are never silently coerced.

# Mod-11 checksum

Digits 1..9 are weighted 10,9,8,7,6,5,4,3,2 and summed. The check digit is
11 minus the sum modulo 11; a result of 11 maps to 0, a result of 10 makes
the number invalid. The result must equal digit 10.
*/
package identity
