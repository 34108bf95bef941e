package identity

import (
	"testing"

	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
)

func TestResolveCollapsesSharedEmail(t *testing.T) {
	records := []Record{
		{Index: 0, Facets: []Facet{EmailFacet("A@X.com"), NamePhoneFacet("john SMITH", "5551234567")}},
		{Index: 1, Facets: []Facet{EmailFacet("a@x.com")}},
	}
	res := Resolve(records, domain.NewIdentitySnapshot())

	if res.IDs[0] != res.IDs[1] {
		t.Fatalf("expected one id, got %q and %q", res.IDs[0], res.IDs[1])
	}
	if res.Merges != 1 {
		t.Fatalf("expected 1 merge, got %d", res.Merges)
	}
	if res.Aliases[EmailFacet("a@x.com").Key] != res.IDs[0] {
		t.Fatal("email facet not bound to the cluster id")
	}
}

func TestResolveIndependentOfRecordOrder(t *testing.T) {
	forward := []Record{
		{Index: 0, Facets: []Facet{CustomerSourceFacet("CUST_0001"), EmailFacet("a@x.com")}},
		{Index: 1, Facets: []Facet{EmailFacet("b@y.com")}},
		{Index: 2, Facets: []Facet{CustomerSourceFacet("CUST_0001")}},
	}
	reversed := []Record{forward[2], forward[1], forward[0]}

	a := Resolve(forward, domain.NewIdentitySnapshot())
	b := Resolve(reversed, domain.NewIdentitySnapshot())

	for idx := 0; idx < 3; idx++ {
		if a.IDs[idx] != b.IDs[idx] {
			t.Fatalf("record %d resolved differently: %q vs %q", idx, a.IDs[idx], b.IDs[idx])
		}
	}
}

func TestResolveIsRepeatable(t *testing.T) {
	records := []Record{
		{Index: 0, Facets: []Facet{NamePhoneFacet("Ada Lovelace", "(555) 111-2222")}},
	}
	first := Resolve(records, domain.NewIdentitySnapshot())
	second := Resolve(records, domain.NewIdentitySnapshot())
	if first.IDs[0] != second.IDs[0] {
		t.Fatalf("resolution not stable: %q vs %q", first.IDs[0], second.IDs[0])
	}
}

func TestResolveEmailOutranksSourceID(t *testing.T) {
	records := []Record{
		{Index: 0, Facets: []Facet{EmailFacet("a@x.com"), CustomerSourceFacet("CUST_0042")}},
	}
	res := Resolve(records, domain.NewIdentitySnapshot())
	want := EmailFacet("a@x.com").ID
	if res.IDs[0] != want {
		t.Fatalf("got %q, want email-derived %q", res.IDs[0], want)
	}
	// the source ref still binds to the adopted id
	if res.Aliases["src:CUST_0042"] != want {
		t.Fatal("source facet not aliased to cluster id")
	}
}

func TestResolveAdoptsSnapshotBinding(t *testing.T) {
	snap := domain.NewIdentitySnapshot()
	snap.AddID("CUST_0007")
	snap.BindFacet(EmailFacet("a@x.com").Key, "CUST_0007")

	records := []Record{
		{Index: 0, Facets: []Facet{EmailFacet("a@x.com"), CustomerSourceFacet("CUST_9999")}},
	}
	res := Resolve(records, snap)
	if res.IDs[0] != "CUST_0007" {
		t.Fatalf("expected adoption of existing id, got %q", res.IDs[0])
	}
	if res.Conflicts != 0 {
		t.Fatalf("expected no conflicts, got %d", res.Conflicts)
	}
}

func TestResolveCountsConflictingBindings(t *testing.T) {
	snap := domain.NewIdentitySnapshot()
	snap.BindFacet(EmailFacet("a@x.com").Key, "CUST_A")
	snap.BindFacet("src:CUST_0001", "CUST_B")

	records := []Record{
		{Index: 0, Facets: []Facet{EmailFacet("a@x.com"), CustomerSourceFacet("CUST_0001")}},
	}
	res := Resolve(records, snap)
	if res.IDs[0] != "CUST_A" {
		t.Fatalf("best facet's binding should win, got %q", res.IDs[0])
	}
	if res.Conflicts != 1 {
		t.Fatalf("expected 1 conflict, got %d", res.Conflicts)
	}
}

func TestCanonicalizeCustomerRef(t *testing.T) {
	cases := []struct{ raw, want string }{
		{"CLI_0042", "CUST_0042"},
		{"cust_0042", "CUST_0042"},
		{"42", "CUST_0042"},
		{"42.0", "CUST_0042"},
		{"12345", "CUST_12345"},
		{"ACME-7", "ACME-7"},
		{"", ""},
	}
	for _, c := range cases {
		if got := CanonicalizeCustomerRef(c.raw); got != c.want {
			t.Fatalf("%q: got %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestCanonicalizeProductRef(t *testing.T) {
	id, numeric := CanonicalizeProductRef("itm_0007")
	if id != "ITM_0007" || numeric != "7" {
		t.Fatalf("got %q %q", id, numeric)
	}
	id, numeric = CanonicalizeProductRef("0007")
	if id != "0007" || numeric != "7" {
		t.Fatalf("got %q %q", id, numeric)
	}
	id, numeric = CanonicalizeProductRef("WIDGET")
	if id != "WIDGET" || numeric != "" {
		t.Fatalf("got %q %q", id, numeric)
	}
}
