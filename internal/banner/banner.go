/*
 * Copyright (c) 2026 CrabDB Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package banner prints the server's startup banner.
package banner

import "fmt"

// Version is the CrabDB release version.
const Version = "0.3.0"

// Print writes the startup banner to stdout.
func Print() {
	fmt.Printf(`
   ____           _     ____  ____
  / ___|_ __ __ _| |__ |  _ \| __ )
 | |   | '__/ _` + "`" + ` | '_ \| | | |  _ \
 | |___| | | (_| | |_) | |_| | |_) |
  \____|_|  \__,_|_.__/|____/|____/

  CrabDB v%s - durable key-object store
  Copyright (c) 2026 CrabDB Authors

`, Version)
}
