// Copyright (c) The basic-job-system Authors. All rights reserved.
// Licensed under the MIT License.

package jobsystem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDescriptorFromEnvFallback(t *testing.T) {
	t.Setenv(envWorkers, "")
	t.Setenv(envStealing, "")

	desc := DescriptorFromEnv(3)
	require.Len(t, desc.Workers, 3)
	for _, wd := range desc.Workers {
		require.True(t, wd.EnableWorkStealing)
	}
}

func TestDescriptorFromEnvOverridesWorkerCount(t *testing.T) {
	t.Setenv(envWorkers, "5")
	t.Setenv(envStealing, "")

	desc := DescriptorFromEnv(2)
	require.Len(t, desc.Workers, 5)
}

func TestDescriptorFromEnvDisablesStealing(t *testing.T) {
	t.Setenv(envWorkers, "2")
	t.Setenv(envStealing, "false")

	desc := DescriptorFromEnv(2)
	for _, wd := range desc.Workers {
		require.False(t, wd.EnableWorkStealing)
	}
}

func TestDescriptorFromEnvIgnoresInvalidWorkerCount(t *testing.T) {
	t.Setenv(envWorkers, "not-a-number")
	t.Setenv(envStealing, "")

	desc := DescriptorFromEnv(4)
	require.Len(t, desc.Workers, 4)
}
