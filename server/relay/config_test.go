/*
 * Copyright 2026 The BlitzBoard Authors. All rights reserved.
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

package relay_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blitzboard/blitzboard/server/relay"
)

func TestConfig(t *testing.T) {
	validConf := relay.Config{}
	validConf.EnsureDefaultValue()
	assert.NoError(t, validConf.Validate())
	assert.Equal(t, relay.DefaultPort, validConf.Port)
	assert.Equal(t, relay.DefaultQueueSize, validConf.QueueSize)

	conf1 := validConf
	conf1.Port = -1
	assert.ErrorIs(t, conf1.Validate(), relay.ErrInvalidPort)

	conf2 := validConf
	conf2.CertFile = "noSuchCertFile"
	assert.ErrorIs(t, conf2.Validate(), relay.ErrInvalidCertFile)

	conf3 := validConf
	conf3.KeyFile = "noSuchKeyFile"
	assert.ErrorIs(t, conf3.Validate(), relay.ErrInvalidKeyFile)

	conf4 := validConf
	conf4.PongTimeout = "10s"
	assert.ErrorIs(t, conf4.Validate(), relay.ErrInvalidKeepalive)

	conf5 := validConf
	conf5.PingInterval = "soon"
	assert.ErrorIs(t, conf5.Validate(), relay.ErrInvalidKeepalive)

	conf6 := validConf
	conf6.QueueSize = 0
	assert.ErrorIs(t, conf6.Validate(), relay.ErrInvalidQueueSize)
}
