package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lotgenius/core/internal/domain"
)

func TestNormalize_OpenBoxBeatsNew(t *testing.T) {
	assert.Equal(t, domain.ConditionOpenBox, Normalize("New (Open Box)"))
	assert.Equal(t, domain.ConditionOpenBox, Normalize("Display Model"))
}

func TestNormalize_LikeNew(t *testing.T) {
	assert.Equal(t, domain.ConditionLikeNew, Normalize("Like New - barely used"))
}

func TestNormalize_Refurbished(t *testing.T) {
	assert.Equal(t, domain.ConditionUsedGood, Normalize("Manufacturer Refurbished"))
}

func TestNormalize_BareNew(t *testing.T) {
	assert.Equal(t, domain.ConditionNew, Normalize("Brand New Sealed"))
	assert.Equal(t, domain.ConditionNew, Normalize("new"))
}

func TestNormalize_ForParts(t *testing.T) {
	assert.Equal(t, domain.ConditionForParts, Normalize("For parts or not working"))
	assert.Equal(t, domain.ConditionForParts, Normalize("damaged, as is"))
}

func TestNormalize_UsedGoodAndFair(t *testing.T) {
	assert.Equal(t, domain.ConditionUsedGood, Normalize("Used - Very Good"))
	assert.Equal(t, domain.ConditionUsedFair, Normalize("Used - Acceptable"))
	assert.Equal(t, domain.ConditionUsedGood, Normalize("used"))
}

func TestNormalize_Unknown(t *testing.T) {
	assert.Equal(t, domain.ConditionUnknown, Normalize(""))
	assert.Equal(t, domain.ConditionUnknown, Normalize("???"))
}

func TestBucket_FallsBackThroughFields(t *testing.T) {
	f := Fields{Notes: "slightly damaged on arrival"}
	assert.Equal(t, domain.ConditionForParts, Bucket(f))
}

func TestBucket_GradeCode(t *testing.T) {
	f := Fields{Grade: "B"}
	assert.Equal(t, domain.ConditionUsedGood, Bucket(f))
}

func TestBucket_Unknown(t *testing.T) {
	assert.Equal(t, domain.ConditionUnknown, Bucket(Fields{}))
}
