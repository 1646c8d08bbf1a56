package util

import (
	"strings"
	"testing"

	"github.com/ValentinKolb/dArr/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 30)
	for _, line := range strings.Split(WrapString(text), "\n") {
		assert.LessOrEqual(t, len(line), Wrap)
	}
	assert.Equal(t, "a b", WrapString("  a   b "))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a, ,b,"))
	assert.Nil(t, SplitList(""))
}

func TestParseShards(t *testing.T) {
	shards, err := ParseShards("100=local, 200=RAFT")
	require.NoError(t, err)
	assert.Equal(t, []common.ServerShard{
		{ShardID: 100, Type: common.ShardTypeLocalIStore},
		{ShardID: 200, Type: common.ShardTypeRemoteIStore},
	}, shards)

	for _, invalid := range []string{"", "100", "x=local", "100=lockmgr"} {
		_, err := ParseShards(invalid)
		assert.Error(t, err, "shards %q", invalid)
	}
}

func TestParseClusterMembers(t *testing.T) {
	members, err := ParseClusterMembers("node-1=localhost:63001,node-2=localhost:63002")
	require.NoError(t, err)
	assert.Len(t, members, 2)
	assert.Equal(t, "localhost:63001", members[common.ReplicaIDFromName("node-1")])

	_, err = ParseClusterMembers("node-1=a:1,node-1=b:2")
	assert.Error(t, err)
	_, err = ParseClusterMembers("node-1")
	assert.Error(t, err)
}
