package chain

import "testing"

func TestNormalizeAddress(t *testing.T) {
	got := NormalizeAddress("  0xABCDEFabcdef0000000000000000000000001234 ")
	want := "0xabcdefabcdef0000000000000000000000001234"
	if got != want {
		t.Fatalf("NormalizeAddress() = %q, want %q", got, want)
	}
}

func TestValidateEVMAddress(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0x1111111111111111111111111111111111111111", true},
		{"0xABCDEFABCDEF0000000000000000000000001234", true},
		{"1111111111111111111111111111111111111111", false},
		{"0x111", false},
		{"0xzz11111111111111111111111111111111111111", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidateEVMAddress(tt.in); got != tt.want {
			t.Errorf("ValidateEVMAddress(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidateTxHash(t *testing.T) {
	valid := "0x" + "ab12000000000000000000000000000000000000000000000000000000000000"
	if !ValidateTxHash(valid) {
		t.Fatalf("expected %s to be valid", valid)
	}
	if ValidateTxHash("0xabc") {
		t.Fatal("short hash must be invalid")
	}
	if ValidateTxHash("0x" + "zz12000000000000000000000000000000000000000000000000000000000000") {
		t.Fatal("non-hex hash must be invalid")
	}
}

func TestChecksumAddress(t *testing.T) {
	got := ChecksumAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	want := "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	if got != want {
		t.Fatalf("ChecksumAddress() = %q, want %q", got, want)
	}
}

func TestNativeSymbol(t *testing.T) {
	if got := NativeSymbol(137); got != "POL" {
		t.Fatalf("NativeSymbol(137) = %q, want POL", got)
	}
	if got := NativeSymbol(999999); got != "ETH" {
		t.Fatalf("NativeSymbol(unknown) = %q, want ETH", got)
	}
	if n, ok := LookupNetwork(11155111); !ok || !n.Testnet {
		t.Fatalf("LookupNetwork(sepolia) = %+v, %v", n, ok)
	}
}
