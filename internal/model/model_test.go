// Copyright (c) 2025 ToeiRei
// Chainmaster - distributed ledger chain manager
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import "testing"

func TestNodeName(t *testing.T) {
	if got := NodeName(7, 1, "abcd"); got != "7_1_abcd" {
		t.Errorf("unexpected NodeName: %q", got)
	}
}

func TestContainerName(t *testing.T) {
	h := DeployHost{RootDir: "/opt/fisco"}
	if got := h.ContainerName("alpha", 2); got != "optfisco-alpha-node2" {
		t.Errorf("unexpected container name: %q", got)
	}
}

func TestDeployRequest_IPConf(t *testing.T) {
	r := DeployRequest{Hosts: []DeployHost{
		{IP: "10.0.0.1", Num: 3, ExtOrgID: 11},
		{IP: "10.0.0.2", Num: 2, ExtOrgID: 12},
	}}
	if r.TotalNodes() != 5 {
		t.Fatalf("expected 5 nodes, got %d", r.TotalNodes())
	}
	lines := r.IPConf()
	if len(lines) != 2 || lines[0] != "10.0.0.1:3 11 1" || lines[1] != "10.0.0.2:2 12 1" {
		t.Errorf("unexpected ipconf: %#v", lines)
	}
}

func TestParseChainStatus(t *testing.T) {
	for _, in := range []string{"running", "3"} {
		s, err := ParseChainStatus(in)
		if err != nil || s != ChainRunning {
			t.Errorf("ParseChainStatus(%q) = %v, %v", in, s, err)
		}
	}
	if _, err := ParseChainStatus("bogus"); err == nil {
		t.Errorf("expected error for unknown status")
	}
	if _, err := ParseChainStatus("42"); err == nil {
		t.Errorf("expected error for out of range code")
	}
	if !ChainDeployFailed.Failed() || ChainRunning.Failed() {
		t.Errorf("unexpected Failed() classification")
	}
}

func TestParseImageCheckPolicy(t *testing.T) {
	if p, err := ParseImageCheckPolicy(""); err != nil || p != ImagePull {
		t.Errorf("empty policy: %v %v", p, err)
	}
	if p, err := ParseImageCheckPolicy("MANUAL"); err != nil || p != ImageManual {
		t.Errorf("manual policy: %v %v", p, err)
	}
	if _, err := ParseImageCheckPolicy("sometimes"); err == nil {
		t.Errorf("expected error")
	}
}
