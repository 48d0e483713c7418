// Copyright (c) The basic-job-system Authors. All rights reserved.
// Licensed under the MIT License.

//go:build !linux

package affinity

// defaultHook is a no-op on platforms without a supported affinity syscall,
// per the platform hook's silent-failure contract.
type defaultHook struct{}

func (defaultHook) Apply(name string, mask uint64) {}
